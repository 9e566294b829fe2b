package model

import "time"

type TaskStatus string

const (
	TaskTodo  TaskStatus = "todo"
	TaskDoing TaskStatus = "doing"
	TaskDone  TaskStatus = "done"
)

var taskStatusCycle = []TaskStatus{TaskTodo, TaskDoing, TaskDone}

func (s TaskStatus) Valid() bool {
	return s == TaskTodo || s == TaskDoing || s == TaskDone
}

// Next returns the status that follows s in the todo -> doing -> done cycle.
func (s TaskStatus) Next() TaskStatus {
	for i, status := range taskStatusCycle {
		if status == s {
			return taskStatusCycle[(i+1)%len(taskStatusCycle)]
		}
	}
	return TaskTodo
}

type Task struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    TaskStatus `json:"status"`
	ParentID  *string    `json:"parentId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TaskGroup is a root task with its direct subtasks.
type TaskGroup struct {
	Task
	Subtasks []Task `json:"tasks"`
}
