package registry

import (
	"errors"
	"testing"

	"github.com/vovakirdan/helltiles/internal/core"
)

type stubGame struct{ id string }

func (s stubGame) ID() string                           { return s.id }
func (s stubGame) Title() string                        { return "Stub " + s.id }
func (s stubGame) Reset(core.RuntimeConfig)             {}
func (s stubGame) Step(core.InputFrame) core.StepResult { return core.StepResult{} }
func (s stubGame) Render(*core.Screen)                  {}
func (s stubGame) State() core.GameState                { return core.GameState{} }

func TestRegisterListCreate(t *testing.T) {
	Register("zz_stub_b", func() Game { return stubGame{"zz_stub_b"} })
	Register("zz_stub_a", func() Game { return stubGame{"zz_stub_a"} })

	if !Exists("zz_stub_a") || Exists("zz_missing") {
		t.Fatal("Exists wrong")
	}

	var ids []string
	for _, g := range List() {
		ids = append(ids, g.ID)
		if g.ID == "zz_stub_b" && g.Title != "Stub zz_stub_b" {
			t.Errorf("title = %q", g.Title)
		}
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("List not sorted: %v", ids)
		}
	}

	g, err := Create("zz_stub_a")
	if err != nil || g.ID() != "zz_stub_a" {
		t.Fatalf("Create = %v, %v", g, err)
	}
	if _, err := Create("zz_missing"); !errors.Is(err, ErrUnknownGame) {
		t.Errorf("Create unknown err = %v", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("zz_dup", func() Game { return stubGame{"zz_dup"} })
	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()
	Register("zz_dup", func() Game { return stubGame{"zz_dup"} })
}
