package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frigo/internal/config"
	"frigo/internal/domain"
	"frigo/internal/llm"
	"frigo/internal/port"
	"frigo/internal/service"
)

type mockJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]domain.ImportJob
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: map[uuid.UUID]domain.ImportJob{}}
}

func (m *mockJobRepo) Create(_ context.Context, job *domain.ImportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	return nil
}

func (m *mockJobRepo) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.ImportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || job.UserID != userID {
		return nil, domain.ErrImportNotFound
	}
	out := job
	return &out, nil
}

func (m *mockJobRepo) Update(_ context.Context, job *domain.ImportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return domain.ErrImportNotFound
	}
	job.UpdatedAt = time.Now()
	m.jobs[job.ID] = *job
	return nil
}

func (m *mockJobRepo) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]domain.ImportJob, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ImportJob
	for _, job := range m.jobs {
		if job.UserID == userID {
			out = append(out, job)
		}
	}
	return out, len(out), nil
}

func (m *mockJobRepo) ClaimQueued(_ context.Context, limit int) ([]domain.ImportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var claimed []domain.ImportJob
	for id, job := range m.jobs {
		if len(claimed) >= limit {
			break
		}
		if job.State == domain.StateQueued && (job.RetryAfter == nil || !job.RetryAfter.After(time.Now())) {
			job.State = domain.StateParsing
			job.UpdatedAt = time.Now()
			m.jobs[id] = job
			claimed = append(claimed, job)
		}
	}
	return claimed, nil
}

func (m *mockJobRepo) RequeueStale(_ context.Context, olderThan time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	n := 0
	for id, job := range m.jobs {
		if job.State == domain.StateParsing && job.UpdatedAt.Before(cutoff) {
			job.State = domain.StateQueued
			job.RetryAfter = nil
			job.UpdatedAt = time.Now()
			m.jobs[id] = job
			n++
		}
	}
	return n, nil
}

func (m *mockJobRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

func (m *mockJobRepo) get(id uuid.UUID) domain.ImportJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id]
}

type mockRecipeRepo struct {
	mu           sync.Mutex
	recipes      []domain.Recipe
	ingredients  [][]domain.RecipeIngredient
	sections     map[uuid.UUID][]domain.InstructionSection
	sectionsErr  error
	createErr    error
	sectionCalls int
}

func newMockRecipeRepo() *mockRecipeRepo {
	return &mockRecipeRepo{sections: map[uuid.UUID][]domain.InstructionSection{}}
}

func (m *mockRecipeRepo) CreateWithIngredients(_ context.Context, recipe *domain.Recipe, ingredients []domain.RecipeIngredient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.recipes = append(m.recipes, *recipe)
	m.ingredients = append(m.ingredients, ingredients)
	return nil
}

func (m *mockRecipeRepo) CreateSections(_ context.Context, recipeID uuid.UUID, sections []domain.InstructionSection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sectionCalls++
	if m.sectionsErr != nil {
		return m.sectionsErr
	}
	m.sections[recipeID] = sections
	return nil
}

func (m *mockRecipeRepo) GetAggregate(_ context.Context, _ uuid.UUID) (*domain.RecipeAggregate, error) {
	return nil, domain.ErrRecipeNotFound
}

func (m *mockRecipeRepo) ListByOwner(_ context.Context, _ uuid.UUID, _, _ int) ([]domain.Recipe, int, error) {
	return nil, 0, nil
}

func (m *mockRecipeRepo) Delete(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

type mockCatalogRepo struct {
	ingredients []domain.Ingredient
	created     []domain.Ingredient
}

func (m *mockCatalogRepo) ListAll(_ context.Context) ([]domain.Ingredient, error) {
	return m.ingredients, nil
}

func (m *mockCatalogRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Ingredient, error) {
	for i := range m.ingredients {
		if m.ingredients[i].ID == id {
			return &m.ingredients[i], nil
		}
	}
	return nil, domain.ErrIngredientNotFound
}

func (m *mockCatalogRepo) Search(_ context.Context, _ string, _ int) ([]domain.Ingredient, error) {
	return nil, nil
}

func (m *mockCatalogRepo) ListVariants(_ context.Context, _ uuid.UUID) ([]domain.Ingredient, error) {
	return nil, nil
}

func (m *mockCatalogRepo) Create(_ context.Context, ing *domain.Ingredient) error {
	m.created = append(m.created, *ing)
	m.ingredients = append(m.ingredients, *ing)
	return nil
}

type mockBookRepo struct{}

func (m *mockBookRepo) GetByID(_ context.Context, _ uuid.UUID) (*domain.Book, error) {
	return nil, domain.ErrBookNotFound
}

func (m *mockBookRepo) Create(_ context.Context, _ *domain.Book) error { return nil }

type mockStorage struct {
	mu       sync.Mutex
	uploads  int
	deletes  []string
	contents map[string][]byte
}

func newMockStorage() *mockStorage {
	return &mockStorage{contents: map[string][]byte{}}
}

func (m *mockStorage) Upload(_ context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads++
	m.contents[input.Bucket+"/"+input.Key] = nil
	return &port.UploadOutput{Location: input.Key}, nil
}

func (m *mockStorage) Download(_ context.Context, bucket, key string) ([]byte, error) {
	return m.contents[bucket+"/"+key], nil
}

func (m *mockStorage) Delete(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, bucket+"/"+key)
	return nil
}

func (m *mockStorage) GetPresignedURL(_ context.Context, _, key string, _ int64) (string, error) {
	return "https://signed.example/" + key, nil
}

type mockStandardizer struct {
	mu    sync.Mutex
	calls int
	out   *domain.StandardizedRecipeData
	err   error
}

func (m *mockStandardizer) Standardize(_ context.Context, _ *domain.ImportJob) (*domain.StandardizedRecipeData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.out, nil
}

func (m *mockStandardizer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockStructurer struct {
	mu    sync.Mutex
	calls int
	out   *domain.ExtractedRecipeData
	err   error
}

func (m *mockStructurer) Structure(_ context.Context, _ *domain.StandardizedRecipeData) (*port.StructureOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &port.StructureOutput{Data: m.out, Model: "test-model"}, nil
}

type mockMatcher struct {
	out []domain.ProcessedIngredient
	err error
}

func (m *mockMatcher) Match(_ context.Context, _ []domain.ExtractedIngredient) ([]domain.ProcessedIngredient, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.out, nil
}

type noopCache struct{}

func (noopCache) Get(_ context.Context, _ string) (*domain.ExtractedRecipeData, bool) {
	return nil, false
}

func (noopCache) Set(_ context.Context, _ string, _ *domain.ExtractedRecipeData) {}

type fixture struct {
	jobs       *mockJobRepo
	recipes    *mockRecipeRepo
	catalog    *mockCatalogRepo
	storage    *mockStorage
	web        *mockStandardizer
	photo      *mockStandardizer
	structurer *mockStructurer
	matcher    *mockMatcher
	svc        service.ImportService
}

func newFixture() *fixture {
	f := &fixture{
		jobs:    newMockJobRepo(),
		recipes: newMockRecipeRepo(),
		catalog: &mockCatalogRepo{},
		storage: newMockStorage(),
		web: &mockStandardizer{out: &domain.StandardizedRecipeData{
			Source: domain.RecipeSource{Type: domain.SourceTypeURL},
			RawText: domain.RawRecipeText{
				Title:        "Garlic Pasta",
				Ingredients:  []string{"2 cloves garlic", "200g pasta"},
				Instructions: []string{"Boil pasta.", "Add garlic."},
			},
		}},
		photo: &mockStandardizer{out: &domain.StandardizedRecipeData{
			Source: domain.RecipeSource{Type: domain.SourceTypePhoto},
			RawText: domain.RawRecipeText{
				Title:        "Scanned Recipe",
				Ingredients:  []string{"1 cup flour"},
				Instructions: []string{"Mix."},
			},
		}},
		structurer: &mockStructurer{out: extractedFixture()},
		matcher:    &mockMatcher{out: matchedFixture()},
	}
	f.svc = service.NewImportService(
		f.jobs, f.recipes, f.catalog, &mockBookRepo{},
		f.storage, f.web, f.photo, f.structurer, f.matcher, noopCache{},
		config.FetchConfig{}, config.S3Config{Bucket: "photos", MaxPhotoSizeMB: 1},
	)
	return f
}

func extractedFixture() *domain.ExtractedRecipeData {
	servings := 4
	return &domain.ExtractedRecipeData{
		Recipe: domain.RecipeCore{Title: "Garlic Pasta", Servings: &servings},
		Difficulty: domain.DifficultyAssessment{
			Level: domain.DifficultyEasy,
			Score: 20,
		},
		Ingredients: []domain.ExtractedIngredient{
			{OriginalText: "2 cloves garlic", IngredientName: "garlic", SequenceOrder: 1},
			{OriginalText: "200g pasta", IngredientName: "pasta", SequenceOrder: 2},
		},
		Sections: []domain.ExtractedSection{
			{
				Title: "Cook", Order: 1,
				Steps: []domain.ExtractedStep{{StepNumber: 1, Instruction: "Boil pasta."}},
			},
		},
	}
}

func matchedFixture() []domain.ProcessedIngredient {
	garlicID := uuid.New()
	pastaID := uuid.New()
	return []domain.ProcessedIngredient{
		{
			ExtractedIngredient: domain.ExtractedIngredient{OriginalText: "2 cloves garlic", IngredientName: "garlic", SequenceOrder: 1},
			IngredientID:        &garlicID,
			Confidence:          1.0,
		},
		{
			ExtractedIngredient: domain.ExtractedIngredient{OriginalText: "200g pasta", IngredientName: "pasta", SequenceOrder: 2},
			IngredientID:        &pastaID,
			Confidence:          1.0,
		},
	}
}

// reviewingJob seeds a job that already completed the pipeline.
func (f *fixture) reviewingJob(t *testing.T, userID uuid.UUID) *domain.ImportJob {
	t.Helper()
	extracted, err := json.Marshal(extractedFixture())
	require.NoError(t, err)
	matches, err := json.Marshal(f.matcher.out)
	require.NoError(t, err)

	job := &domain.ImportJob{
		ID:         uuid.New(),
		UserID:     userID,
		SourceType: domain.SourceTypeURL,
		SourceURL:  "https://example.com/garlic-pasta",
		State:      domain.StateReviewing,
		Extracted:  extracted,
		Matches:    matches,
		FinalTitle: "Garlic Pasta",
	}
	require.NoError(t, f.jobs.Create(context.Background(), job))
	return job
}

func TestCreateFromURL_BlockedDomainCreatesNoJob(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateFromURL(context.Background(), uuid.New(), service.CreateURLImportInput{
		URL: "https://www.youtube.com/watch?v=abc",
	})

	require.Error(t, err)
	assert.True(t, domain.IsBlockedSource(err))
	assert.Equal(t, 0, f.jobs.count())
	assert.Equal(t, 0, f.web.callCount())
}

func TestCreateFromURL_WarningRequiresConfirmation(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	result, err := f.svc.CreateFromURL(context.Background(), userID, service.CreateURLImportInput{
		URL: "https://example.com/about-us",
	})
	require.NoError(t, err)
	assert.Nil(t, result.Job)
	assert.NotEmpty(t, result.Warning)
	assert.Equal(t, 0, f.jobs.count())

	// Confirming proceeds despite the warning.
	result, err = f.svc.CreateFromURL(context.Background(), userID, service.CreateURLImportInput{
		URL:     "https://example.com/about-us",
		Confirm: true,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Job)
	assert.NotEmpty(t, result.Warning)
	assert.Equal(t, result.Warning, result.Job.Warning)
}

func TestCreateFromURL_RunsPipelineToReviewing(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	result, err := f.svc.CreateFromURL(context.Background(), userID, service.CreateURLImportInput{
		URL: "https://example.com/recipes/garlic-pasta",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Job)
	assert.Equal(t, domain.StateFetching, result.Job.State)

	job := waitForState(t, f.jobs, result.Job.ID, domain.StateReviewing)
	assert.NotEmpty(t, job.Standardized)
	assert.NotEmpty(t, job.Extracted)
	assert.NotEmpty(t, job.Matches)
	assert.Equal(t, "Garlic Pasta", job.FinalTitle)
}

func TestCreateFromPhoto_RejectsOversizedAndUnsupported(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	_, err := f.svc.CreateFromPhoto(context.Background(), userID, service.CreatePhotoImportInput{
		Data:        make([]byte, 2*1024*1024),
		ContentType: "image/jpeg",
	})
	assert.ErrorIs(t, err, domain.ErrPhotoTooLarge)

	_, err = f.svc.CreateFromPhoto(context.Background(), userID, service.CreatePhotoImportInput{
		Data:        []byte("gif"),
		ContentType: "image/gif",
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedPhoto)

	assert.Equal(t, 0, f.storage.uploads)
	assert.Equal(t, 0, f.jobs.count())
}

func TestCreateFromPhoto_UploadsAndRunsPipeline(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	job, err := f.svc.CreateFromPhoto(context.Background(), userID, service.CreatePhotoImportInput{
		Data:        []byte("jpeg-bytes"),
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "photos", job.PhotoBucket)
	assert.Contains(t, job.PhotoKey, "imports/"+userID.String()+"/")

	done := waitForState(t, f.jobs, job.ID, domain.StateReviewing)
	assert.NotEmpty(t, done.Extracted)
}

func TestRunPipeline_StandardizeFailureMarksFailed(t *testing.T) {
	f := newFixture()
	f.web.err = domain.ErrExtraction
	userID := uuid.New()

	result, err := f.svc.CreateFromURL(context.Background(), userID, service.CreateURLImportInput{
		URL: "https://example.com/recipes/garlic-pasta",
	})
	require.NoError(t, err)

	job := waitForState(t, f.jobs, result.Job.ID, domain.StateFailed)
	assert.Equal(t, "EXTRACTION_FAILED", job.ErrorCode)
	assert.NotEmpty(t, job.ErrorMessage)
}

func TestRunPipeline_RateLimitQueuesJob(t *testing.T) {
	f := newFixture()
	f.structurer.err = llm.NewRateLimitError("claude", assert.AnError, 120)
	userID := uuid.New()

	result, err := f.svc.CreateFromURL(context.Background(), userID, service.CreateURLImportInput{
		URL: "https://example.com/recipes/garlic-pasta",
	})
	require.NoError(t, err)

	job := waitForState(t, f.jobs, result.Job.ID, domain.StateQueued)
	require.NotNil(t, job.RetryAfter)
	assert.WithinDuration(t, time.Now().Add(120*time.Second), *job.RetryAfter, 5*time.Second)
	assert.Equal(t, 1, job.Attempts)
	assert.Equal(t, "RATE_LIMITED", job.ErrorCode)
}

func TestSave_PersistsRecipeAndFinishesJob(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	job := f.reviewingJob(t, userID)

	recipeID, err := f.svc.Save(context.Background(), userID, job.ID)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, recipeID)

	require.Len(t, f.recipes.recipes, 1)
	saved := f.recipes.recipes[0]
	assert.Equal(t, recipeID, saved.ID)
	assert.Equal(t, userID, saved.OwnerID)
	assert.Equal(t, "Garlic Pasta", saved.Title)
	assert.Len(t, f.recipes.ingredients[0], 2)
	assert.Len(t, f.recipes.sections[recipeID], 1)

	final := f.jobs.get(job.ID)
	assert.Equal(t, domain.StateDone, final.State)
	require.NotNil(t, final.RecipeID)
	assert.Equal(t, recipeID, *final.RecipeID)
}

func TestSave_BlockedByUnresolvedRequiredIngredient(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	unresolved := matchedFixture()
	unresolved[0].IngredientID = nil
	unresolved[0].NeedsReview = true
	f.matcher.out = unresolved
	job := f.reviewingJob(t, userID)

	_, err := f.svc.Save(context.Background(), userID, job.ID)
	assert.ErrorIs(t, err, domain.ErrUnresolvedIngredient)
	assert.Empty(t, f.recipes.recipes)
	assert.Equal(t, domain.StateReviewing, f.jobs.get(job.ID).State)
}

func TestSave_UnresolvedOptionalIngredientIsAllowed(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	matches := matchedFixture()
	matches[1].IngredientID = nil
	matches[1].IsOptional = true
	f.matcher.out = matches
	job := f.reviewingJob(t, userID)

	_, err := f.svc.Save(context.Background(), userID, job.ID)
	require.NoError(t, err)
}

func TestSave_SectionFailureStillReturnsRecipe(t *testing.T) {
	f := newFixture()
	f.recipes.sectionsErr = assert.AnError
	userID := uuid.New()
	job := f.reviewingJob(t, userID)

	recipeID, err := f.svc.Save(context.Background(), userID, job.ID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, recipeID)
	assert.Equal(t, 1, f.recipes.sectionCalls)
	assert.Equal(t, domain.StateDone, f.jobs.get(job.ID).State)
}

func TestSave_RejectsNonReviewingState(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	job := f.reviewingJob(t, userID)
	job.State = domain.StateMatching
	require.NoError(t, f.jobs.Update(context.Background(), job))

	_, err := f.svc.Save(context.Background(), userID, job.ID)
	assert.ErrorIs(t, err, domain.ErrImportNotReviewable)
}

func TestUpdateTitle_OverridesFinalTitle(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	job := f.reviewingJob(t, userID)

	updated, err := f.svc.UpdateTitle(context.Background(), userID, job.ID, "Nonna's Garlic Pasta")
	require.NoError(t, err)
	assert.Equal(t, "Nonna's Garlic Pasta", updated.FinalTitle)

	_, err = f.svc.Save(context.Background(), userID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nonna's Garlic Pasta", f.recipes.recipes[0].Title)
}

func TestResolveIngredient_BindsExistingCatalogEntry(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	matches := matchedFixture()
	matches[0].IngredientID = nil
	matches[0].NeedsReview = true
	f.matcher.out = matches

	garlic := domain.Ingredient{ID: uuid.New(), Name: "garlic", IsBase: true}
	f.catalog.ingredients = []domain.Ingredient{garlic}
	job := f.reviewingJob(t, userID)

	updated, err := f.svc.ResolveIngredient(context.Background(), userID, job.ID, 0, service.ResolveIngredientInput{
		IngredientID: &garlic.ID,
	})
	require.NoError(t, err)

	var resolved []domain.ProcessedIngredient
	require.NoError(t, json.Unmarshal(updated.Matches, &resolved))
	require.NotNil(t, resolved[0].IngredientID)
	assert.Equal(t, garlic.ID, *resolved[0].IngredientID)
	assert.False(t, resolved[0].NeedsReview)
}

func TestResolveIngredient_CreatesNewCatalogEntry(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	matches := matchedFixture()
	matches[0].IngredientID = nil
	matches[0].NeedsReview = true
	f.matcher.out = matches
	job := f.reviewingJob(t, userID)

	updated, err := f.svc.ResolveIngredient(context.Background(), userID, job.ID, 0, service.ResolveIngredientInput{
		NewIngredient: &service.NewIngredientInput{Name: "Black Garlic", PluralName: "Black Garlics"},
	})
	require.NoError(t, err)

	require.Len(t, f.catalog.created, 1)
	assert.Equal(t, "black garlic", f.catalog.created[0].Name)

	var resolved []domain.ProcessedIngredient
	require.NoError(t, json.Unmarshal(updated.Matches, &resolved))
	require.NotNil(t, resolved[0].IngredientID)
	assert.Equal(t, f.catalog.created[0].ID, *resolved[0].IngredientID)
}

func TestResolveIngredient_IndexOutOfRange(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	job := f.reviewingJob(t, userID)

	id := uuid.New()
	_, err := f.svc.ResolveIngredient(context.Background(), userID, job.ID, 9, service.ResolveIngredientInput{
		IngredientID: &id,
	})
	assert.ErrorIs(t, err, domain.ErrIngredientNotFound)
}

func TestCancel_DeletesPhotoBestEffort(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	job := &domain.ImportJob{
		ID:          uuid.New(),
		UserID:      userID,
		SourceType:  domain.SourceTypePhoto,
		PhotoBucket: "photos",
		PhotoKey:    "imports/x/y.jpg",
		State:       domain.StateReviewing,
	}
	require.NoError(t, f.jobs.Create(context.Background(), job))

	require.NoError(t, f.svc.Cancel(context.Background(), userID, job.ID))
	assert.Equal(t, domain.StateCanceled, f.jobs.get(job.ID).State)
	assert.Equal(t, []string{"photos/imports/x/y.jpg"}, f.storage.deletes)
}

func TestCancel_RejectsTerminalJob(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	job := &domain.ImportJob{ID: uuid.New(), UserID: userID, State: domain.StateDone}
	require.NoError(t, f.jobs.Create(context.Background(), job))

	err := f.svc.Cancel(context.Background(), userID, job.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRetry_FailedJobRestartsFromFetching(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	job := &domain.ImportJob{
		ID:           uuid.New(),
		UserID:       userID,
		SourceType:   domain.SourceTypeURL,
		SourceURL:    "https://example.com/recipes/garlic-pasta",
		State:        domain.StateFailed,
		ErrorCode:    "EXTRACTION_FAILED",
		ErrorMessage: "boom",
	}
	require.NoError(t, f.jobs.Create(context.Background(), job))

	retried, err := f.svc.Retry(context.Background(), userID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateFetching, retried.State)
	assert.Empty(t, retried.ErrorCode)

	done := waitForState(t, f.jobs, job.ID, domain.StateReviewing)
	assert.NotEmpty(t, done.Matches)
}

func TestRetry_RejectsReviewingJob(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	job := f.reviewingJob(t, userID)

	_, err := f.svc.Retry(context.Background(), userID, job.ID)
	assert.ErrorIs(t, err, domain.ErrImportNotRetryable)
}

func TestGet_ScopedToOwner(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	job := f.reviewingJob(t, userID)

	_, err := f.svc.Get(context.Background(), uuid.New(), job.ID)
	assert.ErrorIs(t, err, domain.ErrImportNotFound)

	got, err := f.svc.Get(context.Background(), userID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}

func TestGet_PresignsPhotoForReview(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	job := &domain.ImportJob{
		ID:          uuid.New(),
		UserID:      userID,
		SourceType:  domain.SourceTypePhoto,
		PhotoBucket: "photos",
		PhotoKey:    "imports/x/y.jpg",
		State:       domain.StateReviewing,
	}
	require.NoError(t, f.jobs.Create(context.Background(), job))

	got, err := f.svc.Get(context.Background(), userID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/imports/x/y.jpg", got.PhotoURL)
}

// waitForState polls the mock repo until the job reaches want, failing the
// test after a generous deadline. Pipelines run on background goroutines.
func waitForState(t *testing.T, repo *mockJobRepo, id uuid.UUID, want domain.ImportState) domain.ImportJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job := repo.get(id)
		if job.State == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job := repo.get(id)
	t.Fatalf("job %s never reached %s (stuck in %s: %s)", id, want, job.State, job.ErrorMessage)
	return job
}
