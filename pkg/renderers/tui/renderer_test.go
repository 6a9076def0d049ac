package tui

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formgen-image/pkg/model"
	"github.com/goliatone/go-formgen-image/pkg/render"
	"github.com/goliatone/go-formgen-image/pkg/testsupport"
)

type scriptedDriver struct {
	inputs   []string
	confirms []bool
	selects  []int
	failWith error

	inputCfgs   []InputConfig
	confirmCfgs []ConfirmConfig
	selectCfgs  []SelectConfig
	infos       []string
}

func (d *scriptedDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if d.failWith != nil {
		return "", d.failWith
	}
	d.inputCfgs = append(d.inputCfgs, cfg)
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	val := d.inputs[0]
	d.inputs = d.inputs[1:]
	return val, nil
}

func (d *scriptedDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	d.confirmCfgs = append(d.confirmCfgs, cfg)
	if len(d.confirms) == 0 {
		return false, errors.New("no confirm scripted")
	}
	val := d.confirms[0]
	d.confirms = d.confirms[1:]
	return val, nil
}

func (d *scriptedDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	d.selectCfgs = append(d.selectCfgs, cfg)
	if len(d.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	val := d.selects[0]
	d.selects = d.selects[1:]
	return val, nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func imageCropForm() model.FormModel {
	return model.FormModel{
		OperationID: "updateProfile",
		Fields: []model.Field{
			{Name: "title", Type: model.FieldTypeString, Label: "Title", Required: true},
			{
				Name:     "photo",
				Type:     model.FieldTypeObject,
				Label:    "Photo",
				Metadata: map[string]string{model.MetadataWidget: "image-crop"},
				Nested: []model.Field{
					{Name: "base64", Type: model.FieldTypeString, Format: "byte", UIHints: map[string]string{"inputType": "hidden"}},
					{Name: "delete", Type: model.FieldTypeBoolean, Label: "Remove photo", Metadata: map[string]string{model.MetadataMapped: "false"}},
				},
			},
		},
	}
}

func photoVars(withDelete bool) map[string]any {
	vars := map[string]any{
		"max_width":  50,
		"max_height": 50,
		"aspect_ratios": []map[string]any{
			{"key": "16_9", "value": "1.78", "label": "16:9", "checked": false},
			{"key": "1", "value": "1", "label": "Square", "checked": false},
			{"key": "nan", "value": "NaN", "label": "Free", "checked": true},
		},
		"download_uri": "/uploads/a.png",
	}
	if withDelete {
		vars["delete"] = map[string]any{"name": "delete", "label": "btn_delete", "checked": false}
	}
	return vars
}

func decodeDataURI(t *testing.T, uri string) (image.Config, string) {
	t.Helper()
	head, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(head, "data:") {
		t.Fatalf("not a data uri: %.40q", uri)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode image: %v", err)
	}
	return cfg, format
}

func TestRender_ImageCropCropsPickedFile(t *testing.T) {
	driver := &scriptedDriver{
		inputs:  []string{"Hello", "/img/a.png"},
		selects: []int{1},
	}
	files := map[string][]byte{"/img/a.png": testsupport.PNGBytes(t, 200, 100)}
	r, err := New(
		WithPromptDriver(driver),
		WithFileReader(func(path string) ([]byte, error) { return files[path], nil }),
	)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Render(context.Background(), imageCropForm(), render.RenderOptions{
		Widgets: map[string]map[string]any{"photo": photoVars(true)},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got map[string]map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal %s: %v", out, err)
	}
	uri, _ := got["photo"]["base64"].(string)
	cfg, format := decodeDataURI(t, uri)
	if format != "png" || cfg.Width != 50 || cfg.Height != 50 {
		t.Fatalf("expected 50x50 png, got %dx%d %s", cfg.Width, cfg.Height, format)
	}
	if _, ok := got["photo"]["delete"]; ok {
		t.Fatalf("delete must not be asked once a replacement is picked")
	}
	if len(driver.confirmCfgs) != 0 {
		t.Fatalf("unexpected confirm prompts: %+v", driver.confirmCfgs)
	}
	if len(driver.selectCfgs) != 1 || driver.selectCfgs[0].DefaultIndex != 2 {
		t.Fatalf("expected aspect ratio select defaulting to the checked ratio, got %+v", driver.selectCfgs)
	}
	if diff := cmp.Diff([]string{"16:9", "Square", "Free"}, driver.selectCfgs[0].Options); diff != "" {
		t.Fatalf("ratio options mismatch (-want +got):\n%s", diff)
	}
	if driver.inputCfgs[0].Message != "Title *" {
		t.Fatalf("unexpected title prompt %q", driver.inputCfgs[0].Message)
	}
	if len(driver.infos) != 1 || !strings.Contains(driver.infos[0], "/uploads/a.png") {
		t.Fatalf("expected current file notice, got %v", driver.infos)
	}
}

func TestRender_ImageCropKeepAndDelete(t *testing.T) {
	driver := &scriptedDriver{
		inputs:   []string{"Hello", ""},
		confirms: []bool{true},
	}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	vars := photoVars(true)
	vars["value"] = "data:image/png;base64,AAAA"

	out, err := r.Render(context.Background(), imageCropForm(), render.RenderOptions{
		Widgets: map[string]map[string]any{"photo": vars},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "photo%5Bbase64%5D=data%3Aimage%2Fpng%3Bbase64%2CAAAA&photo%5Bdelete%5D=1&title=Hello"
	if string(out) != want {
		t.Fatalf("unexpected form payload\nwant %s\ngot  %s", want, out)
	}
	if len(driver.confirmCfgs) != 1 || driver.confirmCfgs[0].Message != "Remove photo" {
		t.Fatalf("expected delete confirm, got %+v", driver.confirmCfgs)
	}
	if r.ContentType() != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestRender_ImageCropWithoutDeleteField(t *testing.T) {
	driver := &scriptedDriver{inputs: []string{"Hello", ""}}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), imageCropForm(), render.RenderOptions{
		Widgets: map[string]map[string]any{"photo": photoVars(false)},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != `{"title":"Hello"}` {
		t.Fatalf("unexpected payload %s", out)
	}
	if len(driver.confirmCfgs) != 0 {
		t.Fatalf("delete confirm asked without a delete field")
	}
}

func TestRender_ImageCropRetriesUnreadableFile(t *testing.T) {
	driver := &scriptedDriver{
		inputs:  []string{"Hello", "missing.png", "notes.txt", "ok.png"},
		selects: []int{2, 2},
	}
	png := testsupport.PNGBytes(t, 20, 10)
	r, err := New(
		WithPromptDriver(driver),
		WithFileReader(func(path string) ([]byte, error) {
			switch path {
			case "ok.png":
				return png, nil
			case "notes.txt":
				return []byte("plain text"), nil
			default:
				return nil, os.ErrNotExist
			}
		}),
	)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), imageCropForm(), render.RenderOptions{
		Widgets: map[string]map[string]any{"photo": photoVars(false)},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	photo := got["photo"].(map[string]any)
	if photo["base64"] != testsupport.DataURI("image/png", png) {
		t.Fatalf("unconstrained image within bounds should keep its bytes")
	}
	invalid := 0
	for _, msg := range driver.infos {
		if strings.HasPrefix(msg, "Invalid photo") {
			invalid++
		}
	}
	if invalid != 2 {
		t.Fatalf("expected two retry notices, got %v", driver.infos)
	}
}

func TestRender_ScalarsAndPrettyOutput(t *testing.T) {
	driver := &scriptedDriver{
		inputs:   []string{"abc", "3", "Ada"},
		confirms: []bool{true},
	}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	form := model.FormModel{
		Fields: []model.Field{
			{Name: "count", Type: model.FieldTypeInteger, Label: "Count", Required: true},
			{Name: "public", Type: model.FieldTypeBoolean, Label: "Public"},
			{Name: "owner", Type: model.FieldTypeObject, Nested: []model.Field{
				{Name: "name", Type: model.FieldTypeString},
				{Name: "token", Type: model.FieldTypeString, UIHints: map[string]string{"inputType": "hidden"}},
			}},
		},
	}
	out, err := r.Render(context.Background(), form, render.RenderOptions{
		Values: map[string]any{"owner.token": "t-1", "public": "false"},
		Errors: map[string][]string{"count": {"must be positive"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "count=3\nowner.name=Ada\nowner.token=t-1\npublic=true\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("pretty output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"! count: must be positive", `Invalid count: "abc" is not a number`}, driver.infos); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_Errors(t *testing.T) {
	if _, err := New(WithOutputFormat("yaml")); err == nil {
		t.Fatalf("expected unknown format error")
	}

	r, err := New(WithPromptDriver(&scriptedDriver{failWith: ErrAborted}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := r.Render(nil, model.FormModel{}, render.RenderOptions{}); !errors.Is(err, ErrNilContext) {
		t.Fatalf("expected ErrNilContext, got %v", err)
	}
	if _, err := r.Render(context.Background(), imageCropForm(), render.RenderOptions{}); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}

	failing, err := New(
		WithPromptDriver(&scriptedDriver{inputs: []string{"x"}}),
		WithSubmitTransformer(func(map[string]any) (map[string]any, error) { return nil, errors.New("boom") }),
	)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	form := model.FormModel{Fields: []model.Field{{Name: "title", Type: model.FieldTypeString}}}
	if _, err := failing.Render(context.Background(), form, render.RenderOptions{}); err == nil || !strings.Contains(err.Error(), "submit transformer") {
		t.Fatalf("expected transformer error, got %v", err)
	}
}

func TestPrepareImage(t *testing.T) {
	jpegData := testsupport.JPEGBytes(t, 300, 300)
	uri, err := prepareImage(jpegData, cropRequest{Ratio: 1.78})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Fatalf("expected jpeg data uri, got %.40s", uri)
	}
	cfg, _ := decodeDataURI(t, uri)
	if cfg.Width != 300 || cfg.Height != 169 {
		t.Fatalf("expected 300x169 crop, got %dx%d", cfg.Width, cfg.Height)
	}

	if _, err := prepareImage([]byte("nope"), cropRequest{}); !errors.Is(err, ErrUnreadableImage) {
		t.Fatalf("expected ErrUnreadableImage, got %v", err)
	}
	for raw, want := range map[string]float64{"NaN": 0, "": 0, "-1": 0, "0.66": 0.66} {
		if got := parseRatio(raw); got != want {
			t.Fatalf("parseRatio(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestState_SetAndGet(t *testing.T) {
	state := NewState(map[string]any{
		"photo.base64": "abc",
		"meta":         map[string]any{"id": 1},
	}, nil)
	if err := state.SetValue("photo.delete", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	want := map[string]any{
		"photo": map[string]any{"base64": "abc", "delete": true},
		"meta":  map[string]any{"id": 1},
	}
	if diff := cmp.Diff(want, state.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if err := state.SetValue("photo.base64.x", 1); err == nil {
		t.Fatalf("expected error writing through a scalar")
	}
	if _, ok := state.GetValue("photo.missing"); ok {
		t.Fatalf("unexpected value for missing path")
	}
}
