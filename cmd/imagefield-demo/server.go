package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-formgen-image/components/imagecrop"
	"github.com/goliatone/go-formgen-image/components/imagecrop/formgenwiring"
	"github.com/goliatone/go-formgen-image/pkg/i18n"
	"github.com/goliatone/go-formgen-image/pkg/model"
	"github.com/goliatone/go-formgen-image/pkg/render"
	"github.com/goliatone/go-formgen-image/pkg/renderers/vanilla"
	"github.com/goliatone/go-formgen-image/pkg/storage"
	"github.com/goliatone/go-formgen-image/pkg/widgets"
)

const photoField = "photo"

// Profile is the demo entity owning the image field.
type Profile struct {
	ID    int
	Name  string
	Photo string `imagefield:"photo"`
}

type profileStore struct {
	mu       sync.RWMutex
	profiles map[int]*Profile
}

func newProfileStore(seed ...Profile) *profileStore {
	s := &profileStore{profiles: make(map[int]*Profile, len(seed))}
	for i := range seed {
		p := seed[i]
		s.profiles[p.ID] = &p
	}
	return s
}

// get returns a copy so a request can mutate it before save.
func (s *profileStore) get(id int) (*Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, false
	}
	clone := *p
	return &clone, true
}

func (s *profileStore) save(p *Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *p
	s.profiles[p.ID] = &clone
}

type server struct {
	logger   *slog.Logger
	catalog  *i18n.Catalog
	resolver *storage.Resolver
	uploads  *storage.UploadHandler
	renderer *vanilla.Renderer
	profiles *profileStore
	basePath string
	fieldFns []imagecrop.OptionFn
}

func (s *server) routes(mux *http.ServeMux) error {
	if _, err := imagecrop.RegisterRoutes(mux, s.basePath, nil, imagecrop.WithRatioSource(func(r *http.Request) imagecrop.AspectRatios {
		return imagecrop.CanonicalAspectRatios(s.catalog.For(s.locale(r)))
	})); err != nil {
		return err
	}
	mux.Handle("GET /profiles/{id}", http.HandlerFunc(s.showProfile))
	mux.Handle("POST /profiles/{id}", http.HandlerFunc(s.updateProfile))
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServerFS(vanilla.AssetsFS())))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return nil
}

func (s *server) locale(r *http.Request) string {
	if locale := strings.TrimSpace(r.URL.Query().Get("locale")); locale != "" {
		return s.catalog.Match(locale)
	}
	return s.catalog.Match(r.Header.Get("Accept-Language"))
}

func (s *server) adapter(locale string) *imagecrop.Adapter {
	return imagecrop.New(s.catalog.For(locale), s.resolver, s.uploads, imagecrop.WithLogger(s.logger))
}

// formModel is the profile form before per-request binding: a plain title and
// a photo field the decorator expands into the image crop schema.
func (s *server) formModel(adapter *imagecrop.Adapter, id int) (model.FormModel, error) {
	form := model.FormModel{
		OperationID: "updateProfile",
		Endpoint:    "/profiles/" + strconv.Itoa(id),
		Method:      http.MethodPost,
		Fields: []model.Field{
			{Name: "name", Type: model.FieldTypeString, Label: "Name", Required: true},
			{
				Name:   photoField,
				Type:   model.FieldTypeString,
				Format: "image-base64",
				Label:  "Photo",
				Metadata: map[string]string{
					formgenwiring.MetadataMaxWidth:  "320",
					formgenwiring.MetadataMaxHeight: "320",
				},
			},
		},
	}
	decorator := formgenwiring.ImageCropDecorator(adapter, widgets.NewRegistry(), s.basePath, s.fieldFns...)
	if err := model.Decorate(&form, decorator); err != nil {
		return model.FormModel{}, err
	}
	return form, nil
}

func (s *server) bind(ctx context.Context, r *http.Request) (*requestState, int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return nil, http.StatusNotFound, errors.New("unknown profile")
	}
	profile, ok := s.profiles.get(id)
	if !ok {
		return nil, http.StatusNotFound, errors.New("unknown profile")
	}
	locale := s.locale(r)
	adapter := s.adapter(locale)
	form, err := s.formModel(adapter, id)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	field, _ := form.Field(photoField)
	bound, err := adapter.Bind(ctx, photoField, formgenwiring.FieldOptions(adapter, *field, s.fieldFns...), profile)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return &requestState{
		locale:  locale,
		adapter: adapter,
		form:    form,
		bound:   bound,
		profile: profile,
	}, http.StatusOK, nil
}

type requestState struct {
	locale  string
	adapter *imagecrop.Adapter
	form    model.FormModel
	bound   *imagecrop.Form
	profile *Profile
}

func (s *server) showProfile(w http.ResponseWriter, r *http.Request) {
	state, status, err := s.bind(r.Context(), r)
	if err != nil {
		s.fail(w, r, status, err)
		return
	}
	s.render(w, r, state, http.StatusOK)
}

func (s *server) updateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, status, err := s.bind(ctx, r)
	if err != nil {
		s.fail(w, r, status, err)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	state.profile.Name = strings.TrimSpace(r.PostFormValue("name"))
	err = state.adapter.Handle(ctx, state.bound, state.profile, imagecrop.SubmittedValues(r.PostForm, photoField))
	switch {
	case imagecrop.IsDecodeError(err):
		s.logger.InfoContext(ctx, "invalid image submitted", "profile", state.profile.ID, "error", err)
		if state.bound.State() == imagecrop.Removed {
			s.saveRemoval(state.profile)
		}
		s.render(w, r, state, http.StatusUnprocessableEntity)
		return
	case err != nil:
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	if img := state.bound.Data(); img != nil {
		name, err := s.uploads.Upload(ctx, state.profile, photoField, img.Data, img.Extension())
		if err != nil {
			s.fail(w, r, http.StatusInternalServerError, err)
			return
		}
		s.logger.InfoContext(ctx, "profile photo stored", "profile", state.profile.ID, "name", name)
	}
	s.profiles.save(state.profile)
	http.Redirect(w, r, r.URL.Path+"?locale="+state.locale, http.StatusSeeOther)
}

// saveRemoval persists a cleared photo without the rest of a rejected submission.
func (s *server) saveRemoval(p *Profile) {
	stored, ok := s.profiles.get(p.ID)
	if !ok {
		return
	}
	stored.Photo = p.Photo
	s.profiles.save(stored)
}

func (s *server) render(w http.ResponseWriter, r *http.Request, state *requestState, status int) {
	ctx := r.Context()
	vars, err := state.adapter.PopulateView(ctx, state.bound, state.profile)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	formgenwiring.AttachForm(&state.form, state.bound)

	out, err := s.renderer.Render(ctx, state.form, render.RenderOptions{
		Locale:  state.locale,
		Values:  map[string]any{"name": state.profile.Name},
		Errors:  state.bound.ErrorPayload(),
		Widgets: map[string]map[string]any{photoField: vars.Map()},
	})
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	http.Error(w, err.Error(), status)
}
