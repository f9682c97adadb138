package validation

import (
	"errors"
	"strings"
	"testing"

	"TaskAPI/models"
)

func TestTaskCreateValidation(t *testing.T) {
	validate := New()
	long := strings.Repeat("a", 201)
	longDesc := strings.Repeat("d", 1001)
	desc := "Milk and eggs"

	tests := []struct {
		name    string
		payload models.TaskCreate
		field   string
		tag     string
	}{
		{name: "valid", payload: models.TaskCreate{Title: "Buy groceries", Description: &desc}},
		{name: "title at max length", payload: models.TaskCreate{Title: strings.Repeat("a", 200)}},
		{name: "multibyte title counts runes", payload: models.TaskCreate{Title: strings.Repeat("é", 200)}},
		{name: "missing title", payload: models.TaskCreate{}, field: "title", tag: "required"},
		{name: "title too long", payload: models.TaskCreate{Title: long}, field: "title", tag: "max"},
		{name: "description too long", payload: models.TaskCreate{Title: "t", Description: &longDesc}, field: "description", tag: "max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.payload)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			assertFieldError(t, err, tt.field, tt.tag)
		})
	}
}

func TestTaskUpdateValidation(t *testing.T) {
	validate := New()

	tests := []struct {
		name    string
		payload models.TaskUpdate
		field   string
		tag     string
	}{
		{name: "empty update", payload: models.TaskUpdate{}},
		{name: "completed only", payload: models.TaskUpdate{Completed: models.Some(true)}},
		{name: "null description", payload: models.TaskUpdate{Description: models.Null[string]()}},
		{name: "empty description", payload: models.TaskUpdate{Description: models.Some("")}},
		{name: "empty title", payload: models.TaskUpdate{Title: models.Some("")}, field: "title", tag: "min"},
		{name: "title too long", payload: models.TaskUpdate{Title: models.Some(strings.Repeat("a", 201))}, field: "title", tag: "max"},
		{name: "description too long", payload: models.TaskUpdate{Description: models.Some(strings.Repeat("a", 1001))}, field: "description", tag: "max"},
		{name: "null title", payload: models.TaskUpdate{Title: models.Null[string]()}, field: "title", tag: "notnull"},
		{name: "null completed", payload: models.TaskUpdate{Completed: models.Null[bool]()}, field: "completed", tag: "notnull"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.payload)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			assertFieldError(t, err, tt.field, tt.tag)
		})
	}
}

func TestFieldErrorsForDecodeError(t *testing.T) {
	errs := FieldErrors(errors.New("invalid request body: EOF"))
	if len(errs) != 1 || errs[0].Loc[0] != "body" || errs[0].Type != "invalid" {
		t.Fatalf("unexpected detail: %+v", errs)
	}
}

func assertFieldError(t *testing.T, err error, field, tag string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a %s error on %s", tag, field)
	}
	for _, fe := range FieldErrors(err) {
		if len(fe.Loc) == 2 && fe.Loc[0] == "body" && fe.Loc[1] == field && fe.Type == tag {
			if fe.Msg == "" {
				t.Errorf("empty message for %s", field)
			}
			return
		}
	}
	t.Fatalf("expected a %s error on %s, got %+v", tag, field, FieldErrors(err))
}
