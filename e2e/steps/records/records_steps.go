package records

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path string, body any) error
	Status() int
	Field(name string) (any, bool)
	DataField(name string) (any, bool)
	Remember(key string, v any)
	Recall(key string) (any, bool)
}

const base = "/api/v1/users"

// RegisterSteps registers user record step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	s := &recordSteps{tc: tc}

	ctx.Step(`^I create a user with:$`, s.createUser)
	ctx.Step(`^I remember the user id as "([^"]*)"$`, s.rememberUserID)
	ctx.Step(`^I read user "([^"]*)"$`, s.readUser)
	ctx.Step(`^I update user "([^"]*)" with:$`, s.updateUser)
	ctx.Step(`^I delete user "([^"]*)"$`, s.deleteUser)
	ctx.Step(`^I list users$`, s.listUsers)

	ctx.Step(`^the response status should be (\d+)$`, s.statusShouldBe)
	ctx.Step(`^the response message should be "([^"]*)"$`, s.messageShouldBe)
	ctx.Step(`^the user field "([^"]*)" should be "([^"]*)"$`, s.dataFieldShouldBe)
}

type recordSteps struct {
	tc TestContext
}

// body turns a two-column table into a JSON object. Values that parse as
// numbers are sent as numbers unless quoted.
func body(table *godog.Table) map[string]any {
	out := make(map[string]any, len(table.Rows))
	for _, row := range table.Rows {
		key, raw := row.Cells[0].Value, row.Cells[1].Value
		if unq, err := strconv.Unquote(raw); err == nil {
			out[key] = unq
			continue
		}
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			out[key] = n
			continue
		}
		out[key] = raw
	}
	return out
}

func (s *recordSteps) id(ref string) string {
	if v, ok := s.tc.Recall(ref); ok {
		return fmt.Sprint(v)
	}
	return ref
}

func (s *recordSteps) createUser(_ context.Context, table *godog.Table) error {
	return s.tc.Do("POST", base+"/create-user", body(table))
}

func (s *recordSteps) rememberUserID(_ context.Context, key string) error {
	v, ok := s.tc.DataField("userId")
	if !ok {
		return fmt.Errorf("response has no data.userId")
	}
	s.tc.Remember(key, strconv.FormatFloat(v.(float64), 'f', -1, 64))
	return nil
}

func (s *recordSteps) readUser(_ context.Context, ref string) error {
	return s.tc.Do("GET", base+"/read-user/"+s.id(ref), nil)
}

func (s *recordSteps) updateUser(_ context.Context, ref string, table *godog.Table) error {
	return s.tc.Do("PUT", base+"/update-user/"+s.id(ref), body(table))
}

func (s *recordSteps) deleteUser(_ context.Context, ref string) error {
	return s.tc.Do("DELETE", base+"/delete-user/"+s.id(ref), nil)
}

func (s *recordSteps) listUsers(context.Context) error {
	return s.tc.Do("GET", base+"/read-users", nil)
}

func (s *recordSteps) statusShouldBe(_ context.Context, want int) error {
	if got := s.tc.Status(); got != want {
		msg, _ := s.tc.Field("message")
		return fmt.Errorf("expected status %d, got %d (%v)", want, got, msg)
	}
	return nil
}

func (s *recordSteps) messageShouldBe(_ context.Context, want string) error {
	got, _ := s.tc.Field("message")
	if got != want {
		return fmt.Errorf("expected message %q, got %q", want, got)
	}
	return nil
}

func (s *recordSteps) dataFieldShouldBe(_ context.Context, field, want string) error {
	got, ok := s.tc.DataField(field)
	if !ok {
		return fmt.Errorf("response has no data.%s", field)
	}
	if strings.TrimSpace(fmt.Sprint(got)) != want {
		return fmt.Errorf("expected data.%s = %q, got %v", field, want, got)
	}
	return nil
}
