package classroom

import (
	"context"
	"strings"

	"classroom-backend/internal/model"
	"classroom-backend/internal/store"
)

// Todos returns the to-do list, newest first.
func (s *Service) Todos(ctx context.Context) ([]model.TodoItem, error) {
	todos := []model.TodoItem{}
	if _, err := store.GetJSON(ctx, s.store, store.KeyTodos, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// AddTodo prepends a new item. The oldest items beyond the configured cap
// are dropped.
func (s *Service) AddTodo(ctx context.Context, text string) (model.TodoItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.TodoItem{}, ErrEmptyText
	}
	item := model.TodoItem{ID: s.newID(), Text: text}
	err := store.UpdateJSON(ctx, s.store, store.KeyTodos, func(todos *[]model.TodoItem, _ bool) error {
		*todos = capFront(append([]model.TodoItem{item}, *todos...), s.cfg.Logs.TodoLimit)
		return nil
	})
	if err != nil {
		return model.TodoItem{}, err
	}
	return item, nil
}

// UpdateTodo replaces the text of item id.
func (s *Service) UpdateTodo(ctx context.Context, id, text string) (model.TodoItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.TodoItem{}, ErrEmptyText
	}
	return s.modifyTodo(ctx, id, func(item *model.TodoItem) {
		item.Text = text
	})
}

// ToggleTodo flips the completed flag of item id.
func (s *Service) ToggleTodo(ctx context.Context, id string) (model.TodoItem, error) {
	return s.modifyTodo(ctx, id, func(item *model.TodoItem) {
		item.Completed = !item.Completed
	})
}

// DeleteTodo removes item id.
func (s *Service) DeleteTodo(ctx context.Context, id string) error {
	return store.UpdateJSON(ctx, s.store, store.KeyTodos, func(todos *[]model.TodoItem, _ bool) error {
		for i := range *todos {
			if (*todos)[i].ID == id {
				*todos = append((*todos)[:i], (*todos)[i+1:]...)
				return nil
			}
		}
		return ErrTodoNotFound
	})
}

func (s *Service) modifyTodo(ctx context.Context, id string, fn func(item *model.TodoItem)) (model.TodoItem, error) {
	var out model.TodoItem
	err := store.UpdateJSON(ctx, s.store, store.KeyTodos, func(todos *[]model.TodoItem, _ bool) error {
		for i := range *todos {
			if (*todos)[i].ID == id {
				fn(&(*todos)[i])
				out = (*todos)[i]
				return nil
			}
		}
		return ErrTodoNotFound
	})
	return out, err
}

// capFront keeps the first limit items; limit <= 0 keeps everything.
func capFront[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
