package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formgen-image/pkg/renderers/tui"
	"github.com/goliatone/go-formgen-image/pkg/testsupport"
)

type scripted struct {
	inputs   []string
	confirms []bool
	selects  []int
	prompts  []string
}

func (s *scripted) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if len(s.inputs) == 0 {
		return "", errors.New("unexpected input prompt")
	}
	v := s.inputs[0]
	s.inputs = s.inputs[1:]
	return v, nil
}

func (s *scripted) Confirm(_ context.Context, cfg tui.ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if len(s.confirms) == 0 {
		return false, errors.New("unexpected confirm prompt")
	}
	v := s.confirms[0]
	s.confirms = s.confirms[1:]
	return v, nil
}

func (s *scripted) Select(_ context.Context, cfg tui.SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message+": "+strings.Join(cfg.Options, "|"))
	if len(s.selects) == 0 {
		return -1, errors.New("unexpected select prompt")
	}
	v := s.selects[0]
	s.selects = s.selects[1:]
	return v, nil
}

func (s *scripted) Info(context.Context, string) error { return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_NewImage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	if err := os.WriteFile(src, testsupport.PNGBytes(t, 60, 30), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	driver := &scripted{inputs: []string{src}, selects: []int{2}}

	out, err := run(context.Background(), config{
		field: "avatar", label: "Avatar", locale: "fr-CA", format: "json", maxWidth: 10, maxHeight: 10,
	}, driver, quietLogger())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var payload map[string]map[string]string
	if err := json.Unmarshal(out, &payload); err != nil {
		t.Fatalf("unmarshal %s: %v", out, err)
	}
	if !strings.HasPrefix(payload["avatar"]["base64"], "data:image/png;base64,") {
		t.Fatalf("unexpected payload %s", out)
	}
	if len(driver.prompts) != 2 || driver.prompts[1] != "Aspect ratio: 16:9|4:3|Carré|2:3|Libre" {
		t.Fatalf("unexpected prompts %q", driver.prompts)
	}
}

func TestRun_DeleteCurrentImage(t *testing.T) {
	current := filepath.Join(t.TempDir(), "stored.png")
	if err := os.WriteFile(current, testsupport.PNGBytes(t, 4, 4), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	driver := &scripted{inputs: []string{""}, confirms: []bool{true}}

	out, err := run(context.Background(), config{
		field: "photo", label: "Photo", locale: "en", format: "form", current: current,
	}, driver, quietLogger())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if string(out) != "photo%5Bdelete%5D=1" {
		t.Fatalf("unexpected payload %q", out)
	}
	if driver.prompts[len(driver.prompts)-1] != "Delete" {
		t.Fatalf("expected translated delete prompt, got %q", driver.prompts)
	}

	driver = &scripted{inputs: []string{""}}
	out, err = run(context.Background(), config{
		field: "photo", label: "Photo", locale: "en", format: "json", current: current, noDelete: true,
	}, driver, quietLogger())
	if err != nil || string(out) != "{}" {
		t.Fatalf("expected empty payload without delete prompt, got %q (%v)", out, err)
	}
}

func TestRun_UnknownFormat(t *testing.T) {
	if _, err := run(context.Background(), config{field: "photo", format: "xml"}, &scripted{}, quietLogger()); err == nil {
		t.Fatalf("expected unknown format error")
	}
}
