package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/go-cmp/cmp"
)

type profile struct {
	ID    int
	Photo string `imagefield:"photo"`
	Cover string `imagefield:"cover,omitempty"`
	count int    `imagefield:"count"`
}

type album struct {
	files map[string]string
}

func (a *album) UploadedFile(field string) (string, bool) {
	name, ok := a.files[field]
	return name, ok
}

func (a *album) SetUploadedFile(field, name string) {
	if a.files == nil {
		a.files = map[string]string{}
	}
	a.files[field] = name
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	headErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = body
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.headErr != nil {
		return nil, f.headErr
	}
	if _, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestCleanKey(t *testing.T) {
	valid := map[string]string{
		"a.png":         "a.png",
		"/photos/a.png": "photos/a.png",
		"photos\\b.png": "photos/b.png",
	}
	for in, want := range valid {
		got, err := cleanKey(in)
		if err != nil || got != want {
			t.Fatalf("cleanKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", " ", ".", "../etc/passwd", "a/../../b", "a//b"} {
		if _, err := cleanKey(in); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("cleanKey(%q): expected ErrInvalidKey, got %v", in, err)
		}
	}
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(root, "/uploads/")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.Put(ctx, "photos/a.png", []byte("png"), "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "photos", "a.png"))
	if err != nil || string(data) != "png" {
		t.Fatalf("unexpected file contents %q (%v)", data, err)
	}
	if ok, err := store.Exists(ctx, "photos/a.png"); err != nil || !ok {
		t.Fatalf("expected file to exist: %v", err)
	}
	if ok, _ := store.Exists(ctx, "photos"); ok {
		t.Fatalf("directories are not files")
	}
	if got := store.Path("photos/a.png"); got != filepath.Join(root, "photos", "a.png") {
		t.Fatalf("unexpected path %q", got)
	}
	if got := store.URL("photos/a.png"); got != "/uploads/photos/a.png" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := store.URL("../x"); got != "" {
		t.Fatalf("expected empty url for invalid key, got %q", got)
	}
	if err := store.Put(ctx, "../escape.png", nil, ""); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}

	if err := store.Delete(ctx, "photos/a.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "photos/a.png"); err != nil {
		t.Fatalf("deleting a missing file should succeed: %v", err)
	}
	if ok, _ := store.Exists(ctx, "photos/a.png"); ok {
		t.Fatalf("file should be gone")
	}

	if _, err := NewLocalStore("", ""); err == nil {
		t.Fatalf("expected error for empty root")
	}
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	store, err := NewS3Store(client, "media", WithKeyPrefix("/images/"), WithRegion("eu-west-1"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.Put(ctx, "a.png", []byte("png"), "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"media/images/a.png": "image/png"}, client.types); diff != "" {
		t.Fatalf("stored objects mismatch (-want +got):\n%s", diff)
	}
	if ok, err := store.Exists(ctx, "a.png"); err != nil || !ok {
		t.Fatalf("expected object to exist: %v", err)
	}
	if ok, err := store.Exists(ctx, "b.png"); err != nil || ok {
		t.Fatalf("expected missing object, got %v %v", ok, err)
	}
	if got := store.Path("a.png"); got != "s3://media/images/a.png" {
		t.Fatalf("unexpected path %q", got)
	}
	if got := store.URL("a.png"); got != "https://media.s3.eu-west-1.amazonaws.com/images/a.png" {
		t.Fatalf("unexpected url %q", got)
	}
	if err := store.Delete(ctx, "a.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(client.objects) != 0 {
		t.Fatalf("object not deleted")
	}

	cdn, _ := NewS3Store(client, "media", WithPublicBaseURL("https://cdn.example.com/"))
	if got := cdn.URL("a.png"); got != "https://cdn.example.com/a.png" {
		t.Fatalf("unexpected cdn url %q", got)
	}

	client.headErr = &smithy.GenericAPIError{Code: "NoSuchKey"}
	if ok, err := store.Exists(ctx, "a.png"); err != nil || ok {
		t.Fatalf("NoSuchKey should read as missing, got %v %v", ok, err)
	}
	client.headErr = &smithy.GenericAPIError{Code: "AccessDenied"}
	var apiErr smithy.APIError
	if _, err := store.Exists(ctx, "a.png"); !errors.As(err, &apiErr) || apiErr.ErrorCode() != "AccessDenied" {
		t.Fatalf("expected wrapped AccessDenied, got %v", err)
	}

	if _, err := NewS3Store(nil, "media"); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := NewS3Store(client, ""); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
}

func TestFileName(t *testing.T) {
	p := &profile{Photo: "a.png"}
	name, ok, err := FileName(p, "photo")
	if err != nil || !ok || name != "a.png" {
		t.Fatalf("FileName = %q %v %v", name, ok, err)
	}
	if _, ok, err := FileName(*p, "cover"); err != nil || ok {
		t.Fatalf("empty cover should report no file, got %v %v", ok, err)
	}
	if err := SetFileName(p, "cover", "c.png"); err != nil || p.Cover != "c.png" {
		t.Fatalf("SetFileName: %v (%q)", err, p.Cover)
	}
	if err := SetFileName(*p, "photo", ""); !errors.Is(err, ErrNotAddressable) {
		t.Fatalf("expected ErrNotAddressable, got %v", err)
	}
	if _, _, err := FileName(p, "avatar"); !errors.Is(err, ErrUnmappedField) {
		t.Fatalf("expected ErrUnmappedField, got %v", err)
	}
	if _, _, err := FileName(p, "count"); err == nil {
		t.Fatalf("expected error for unexported non-string field")
	}
	if _, _, err := FileName(nil, "photo"); !errors.Is(err, ErrUnmappedField) {
		t.Fatalf("expected ErrUnmappedField for nil entity, got %v", err)
	}
	if _, _, err := FileName((*profile)(nil), "photo"); !errors.Is(err, ErrNotAddressable) {
		t.Fatalf("expected ErrNotAddressable for typed nil, got %v", err)
	}

	a := &album{}
	if _, ok, _ := FileName(a, "photo"); ok {
		t.Fatalf("empty album should record nothing")
	}
	_ = SetFileName(a, "photo", "x.png")
	if name, ok, _ := FileName(a, "photo"); !ok || name != "x.png" {
		t.Fatalf("unexpected album file %q", name)
	}
}

func TestResolver(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Put(ctx, "a.png", []byte("png"), "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}
	resolver := NewResolver(store)

	p := &profile{Photo: "a.png", Cover: "gone.png"}
	if got, ok, err := resolver.ResolvePath(ctx, p, "photo"); err != nil || !ok || got != store.Path("a.png") {
		t.Fatalf("ResolvePath = %q %v %v", got, ok, err)
	}
	if _, ok, err := resolver.ResolvePath(ctx, p, "cover"); err != nil || ok {
		t.Fatalf("missing file should not resolve, got %v %v", ok, err)
	}
	if got, ok, err := resolver.ResolveURI(ctx, p, "photo"); err != nil || !ok || got != "/uploads/a.png" {
		t.Fatalf("ResolveURI = %q %v %v", got, ok, err)
	}
	if _, ok, err := resolver.ResolveURI(ctx, &profile{}, "photo"); err != nil || ok {
		t.Fatalf("entity without file should not resolve, got %v %v", ok, err)
	}
	if _, _, err := resolver.ResolvePath(ctx, p, "avatar"); !errors.Is(err, ErrUnmappedField) {
		t.Fatalf("expected ErrUnmappedField, got %v", err)
	}
}

func TestUploadHandler(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	store, _ := NewS3Store(client, "media")
	names := []string{"first", "second", "third"}
	calls := 0
	handler := NewUploadHandler(store,
		WithDirectory("photos"),
		WithNameGenerator(func() string {
			name := names[calls%len(names)]
			calls++
			return name
		}),
	)

	p := &profile{}
	name, err := handler.Upload(ctx, p, "photo", []byte("one"), "png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if name != "photos/first.png" || p.Photo != name {
		t.Fatalf("unexpected name %q (entity %q)", name, p.Photo)
	}
	if client.types["media/photos/first.png"] != "image/png" {
		t.Fatalf("content type not derived from extension: %v", client.types)
	}

	if _, err := handler.Upload(ctx, p, "photo", []byte("two"), ".jpg"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if diff := cmp.Diff(map[string][]byte{"media/photos/second.jpg": []byte("two")}, client.objects); diff != "" {
		t.Fatalf("replaced file should be deleted (-want +got):\n%s", diff)
	}

	if err := handler.Remove(ctx, p, "photo"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if p.Photo != "" || len(client.objects) != 0 {
		t.Fatalf("remove should clear entity and store, got %q %v", p.Photo, client.objects)
	}
	if err := handler.Remove(ctx, p, "photo"); err != nil {
		t.Fatalf("removing with nothing stored should be a no-op: %v", err)
	}
	if _, err := handler.Upload(ctx, profile{}, "photo", []byte("x"), ".png"); !errors.Is(err, ErrNotAddressable) {
		t.Fatalf("expected ErrNotAddressable, got %v", err)
	}
	if len(client.objects) != 0 {
		t.Fatalf("failed upload must not leave files behind: %v", client.objects)
	}
}

func TestUploadHandler_DefaultNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	handler := NewUploadHandler(store)
	a, b := &album{}, &album{}
	first, err := handler.Upload(context.Background(), a, "cover", []byte("x"), ".gif")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	second, _ := handler.Upload(context.Background(), b, "cover", []byte("y"), ".gif")
	if first == second || filepath.Ext(first) != ".gif" || len(first) != 36+4 {
		t.Fatalf("expected distinct uuid names, got %q and %q", first, second)
	}
}
