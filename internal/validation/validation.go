// Package validation evaluates ordered, declarative field rules and turns
// every violation into a human readable message.
package validation

import (
	"context"
	"fmt"
	"reflect"

	"golang.org/x/sync/errgroup"
)

// Rule is a named predicate. Violated returns true when the value breaks
// the rule.
type Rule struct {
	Name     string
	Expect   string
	Violated func(v any) bool

	optional bool
}

// Field binds a value to the rules it must satisfy.
type Field struct {
	Name  string
	Value any
	Rules []Rule
}

// Schema is evaluated in declaration order.
type Schema []Field

type Result struct {
	IsValid bool     `json:"isValid"`
	Fields  []string `json:"fields"`
}

// Validate evaluates every rule of every field. Fields are independent: a
// failure in one never stops evaluation of the next. The only way to skip
// rules is an Optional rule on an absent value.
func Validate(schema Schema) Result {
	fields := []string{}
	for _, f := range schema {
		for _, rule := range f.Rules {
			if rule.optional {
				if absent(f.Value) {
					break
				}
				continue
			}
			if violated(rule, f.Value) {
				fields = append(fields, Message(f.Name, rule, f.Value))
			}
		}
	}
	return Result{IsValid: len(fields) == 0, Fields: fields}
}

// Concurrently validates independent schemas in parallel. Messages are
// merged in argument order regardless of which schema finishes first.
func Concurrently(ctx context.Context, schemas ...Schema) (Result, error) {
	results := make([]Result, len(schemas))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range schemas {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Validate(s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return Merge(results...), nil
}

func Merge(results ...Result) Result {
	fields := []string{}
	for _, r := range results {
		fields = append(fields, r.Fields...)
	}
	return Result{IsValid: len(fields) == 0, Fields: fields}
}

// Message renders the failure text for one rule.
func Message(field string, rule Rule, v any) string {
	return fmt.Sprintf("Field '%s' expected to be %s. Got: %s", field, rule.Expect, display(v))
}

// violated treats a panicking predicate as a violation.
func violated(rule Rule, v any) (bad bool) {
	defer func() {
		if recover() != nil {
			bad = true
		}
	}()
	if rule.Violated == nil {
		return false
	}
	return rule.Violated(indirect(v))
}

func absent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// indirect dereferences pointers so rules see plain values. Absent values
// become nil.
func indirect(v any) any {
	for {
		if absent(v) {
			return nil
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer {
			return v
		}
		v = rv.Elem().Interface()
	}
}

func display(v any) string {
	v = indirect(v)
	if v == nil {
		return "undefined"
	}
	return fmt.Sprintf("%v", v)
}
