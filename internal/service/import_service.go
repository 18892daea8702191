package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"frigo/internal/cache"
	"frigo/internal/config"
	"frigo/internal/domain"
	"frigo/internal/llm"
	"frigo/internal/port"
	"frigo/internal/standardize"
)

const pipelineTimeout = 5 * time.Minute

// CreateURLImportInput is the DTO for URL import requests.
type CreateURLImportInput struct {
	URL     string     `json:"url" binding:"required"`
	Confirm bool       `json:"confirm"`
	BookID  *uuid.UUID `json:"book_id"`
}

// CreatePhotoImportInput carries an uploaded recipe photo.
type CreatePhotoImportInput struct {
	Data        []byte
	ContentType string
	BookID      *uuid.UUID
}

// ResolveIngredientInput binds a reviewed line item to a catalog entry. One
// of IngredientID or NewIngredient must be set.
type ResolveIngredientInput struct {
	IngredientID  *uuid.UUID          `json:"ingredient_id"`
	NewIngredient *NewIngredientInput `json:"new_ingredient"`
}

// NewIngredientInput creates a catalog entry during resolution.
type NewIngredientInput struct {
	Name       string `json:"name" binding:"required"`
	PluralName string `json:"plural_name"`
	Family     string `json:"family"`
}

// URLImportResult is returned by CreateFromURL. When the soft heuristic does
// not recognize the URL as a recipe page and the caller did not confirm, Job
// is nil and Warning explains why.
type URLImportResult struct {
	Job     *domain.ImportJob `json:"job,omitempty"`
	Warning string            `json:"warning,omitempty"`
}

// ImportService drives recipe ingestion jobs through the pipeline.
type ImportService interface {
	CreateFromURL(ctx context.Context, userID uuid.UUID, input CreateURLImportInput) (*URLImportResult, error)
	CreateFromPhoto(ctx context.Context, userID uuid.UUID, input CreatePhotoImportInput) (*domain.ImportJob, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.ImportJob, error)
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.ImportJob, int, error)
	UpdateTitle(ctx context.Context, userID, id uuid.UUID, title string) (*domain.ImportJob, error)
	ResolveIngredient(ctx context.Context, userID, id uuid.UUID, index int, input ResolveIngredientInput) (*domain.ImportJob, error)
	Save(ctx context.Context, userID, id uuid.UUID) (uuid.UUID, error)
	Cancel(ctx context.Context, userID, id uuid.UUID) error
	Retry(ctx context.Context, userID, id uuid.UUID) (*domain.ImportJob, error)
	// RunPipeline executes the pipeline stages for a job from its current
	// state until it reaches reviewing or an off-path state. The queue
	// worker calls this for reclaimed rate-limited jobs.
	RunPipeline(ctx context.Context, job *domain.ImportJob)
}

type importService struct {
	jobs        port.ImportJobRepository
	recipes     port.RecipeRepository
	ingredients port.IngredientRepository
	books       port.BookRepository
	storage     port.ObjectStorage
	web         port.SourceStandardizer
	photo       port.SourceStandardizer
	structurer  port.RecipeStructurer
	matcher     port.IngredientMatcher
	cache       port.ExtractionCache
	fetchCfg    config.FetchConfig
	s3Cfg       config.S3Config
}

// NewImportService creates the import pipeline orchestrator.
func NewImportService(
	jobs port.ImportJobRepository,
	recipes port.RecipeRepository,
	ingredients port.IngredientRepository,
	books port.BookRepository,
	storage port.ObjectStorage,
	web port.SourceStandardizer,
	photo port.SourceStandardizer,
	structurer port.RecipeStructurer,
	matcher port.IngredientMatcher,
	extractionCache port.ExtractionCache,
	fetchCfg config.FetchConfig,
	s3Cfg config.S3Config,
) ImportService {
	return &importService{
		jobs:        jobs,
		recipes:     recipes,
		ingredients: ingredients,
		books:       books,
		storage:     storage,
		web:         web,
		photo:       photo,
		structurer:  structurer,
		matcher:     matcher,
		cache:       extractionCache,
		fetchCfg:    fetchCfg,
		s3Cfg:       s3Cfg,
	}
}

func (s *importService) CreateFromURL(ctx context.Context, userID uuid.UUID, input CreateURLImportInput) (*URLImportResult, error) {
	warning, err := standardize.CheckURL(input.URL, s.fetchCfg.ExtraBlockedDomains())
	if err != nil {
		return nil, err
	}
	if warning != "" && !input.Confirm {
		return &URLImportResult{Warning: warning}, nil
	}

	if err := s.checkBook(ctx, input.BookID); err != nil {
		return nil, err
	}

	job := &domain.ImportJob{
		ID:         uuid.New(),
		UserID:     userID,
		SourceType: domain.SourceTypeURL,
		SourceURL:  strings.TrimSpace(input.URL),
		BookID:     input.BookID,
		State:      domain.StateInput,
		Warning:    warning,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("importService.CreateFromURL: %w", err)
	}

	s.start(job)
	return &URLImportResult{Job: job, Warning: warning}, nil
}

func (s *importService) CreateFromPhoto(ctx context.Context, userID uuid.UUID, input CreatePhotoImportInput) (*domain.ImportJob, error) {
	if _, ok := domain.AllowedPhotoContentTypes[input.ContentType]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedPhoto, input.ContentType)
	}
	maxBytes := s.s3Cfg.MaxPhotoSizeMB * 1024 * 1024
	if maxBytes > 0 && int64(len(input.Data)) > maxBytes {
		return nil, fmt.Errorf("%w: limit is %dMB", domain.ErrPhotoTooLarge, s.s3Cfg.MaxPhotoSizeMB)
	}
	if err := s.checkBook(ctx, input.BookID); err != nil {
		return nil, err
	}

	ext := "jpg"
	if input.ContentType == "image/png" {
		ext = "png"
	}
	key := fmt.Sprintf("imports/%s/%s.%s", userID, uuid.New(), ext)

	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3Cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(input.Data),
		ContentType: input.ContentType,
		Size:        int64(len(input.Data)),
	})
	if err != nil {
		return nil, fmt.Errorf("importService.CreateFromPhoto upload: %w", err)
	}

	job := &domain.ImportJob{
		ID:               uuid.New(),
		UserID:           userID,
		SourceType:       domain.SourceTypePhoto,
		PhotoBucket:      s.s3Cfg.Bucket,
		PhotoKey:         key,
		PhotoContentType: input.ContentType,
		BookID:           input.BookID,
		State:            domain.StateInput,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("importService.CreateFromPhoto: %w", err)
	}

	s.start(job)
	return job, nil
}

// start advances a fresh job to fetching and runs the pipeline in the
// background, detached from the request context.
func (s *importService) start(job *domain.ImportJob) {
	next, err := domain.NextState(job.State, domain.EventStart)
	if err != nil {
		log.Printf("importService.start: job %s: %v", job.ID, err)
		return
	}
	job.State = next

	j := *job // copy for the goroutine
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
		defer cancel()

		if err := s.jobs.Update(ctx, &j); err != nil {
			log.Printf("importService.start: job %s: %v", j.ID, err)
			return
		}
		s.RunPipeline(ctx, &j)
	}()
}

func (s *importService) RunPipeline(ctx context.Context, job *domain.ImportJob) {
	if job.State == domain.StateFetching {
		if !s.standardizeStage(ctx, job) {
			return
		}
	}
	if job.State == domain.StateParsing {
		if !s.structureStage(ctx, job) {
			return
		}
	}
	if job.State == domain.StateMatching {
		s.matchStage(ctx, job)
	}
}

func (s *importService) standardizeStage(ctx context.Context, job *domain.ImportJob) bool {
	standardizer := s.web
	if job.SourceType == domain.SourceTypePhoto {
		standardizer = s.photo
	}

	std, err := standardizer.Standardize(ctx, job)
	if err != nil {
		s.fail(ctx, job, err)
		return false
	}

	payload, err := json.Marshal(std)
	if err != nil {
		s.fail(ctx, job, fmt.Errorf("%w: encoding standardized data: %v", domain.ErrExtraction, err))
		return false
	}
	job.Standardized = payload

	return s.advance(ctx, job, domain.EventStandardized)
}

func (s *importService) structureStage(ctx context.Context, job *domain.ImportJob) bool {
	var std domain.StandardizedRecipeData
	if err := json.Unmarshal(job.Standardized, &std); err != nil {
		s.fail(ctx, job, fmt.Errorf("%w: corrupt standardized payload: %v", domain.ErrParse, err))
		return false
	}

	fingerprint := cache.Fingerprint(job)
	extracted, hit := s.cache.Get(ctx, fingerprint)
	if hit {
		log.Printf("importService: job %s extraction cache hit", job.ID)
	} else {
		job.Attempts++
		out, err := s.structurer.Structure(ctx, &std)
		if err != nil {
			var rlErr *llm.RateLimitError
			if errors.As(err, &rlErr) {
				s.queueForRetry(ctx, job, rlErr)
				return false
			}
			s.fail(ctx, job, err)
			return false
		}
		extracted = out.Data
		s.cache.Set(ctx, fingerprint, extracted)
	}

	payload, err := json.Marshal(extracted)
	if err != nil {
		s.fail(ctx, job, fmt.Errorf("%w: encoding extraction: %v", domain.ErrParse, err))
		return false
	}
	job.Extracted = payload

	return s.advance(ctx, job, domain.EventStructured)
}

func (s *importService) matchStage(ctx context.Context, job *domain.ImportJob) bool {
	var extracted domain.ExtractedRecipeData
	if err := json.Unmarshal(job.Extracted, &extracted); err != nil {
		s.fail(ctx, job, fmt.Errorf("%w: corrupt extraction payload: %v", domain.ErrParse, err))
		return false
	}

	matches, err := s.matcher.Match(ctx, extracted.Ingredients)
	if err != nil {
		s.fail(ctx, job, err)
		return false
	}

	payload, err := json.Marshal(matches)
	if err != nil {
		s.fail(ctx, job, fmt.Errorf("%w: encoding matches: %v", domain.ErrMatchCatalog, err))
		return false
	}
	job.Matches = payload
	job.FinalTitle = extracted.Recipe.Title

	return s.advance(ctx, job, domain.EventMatched)
}

// advance applies event, persists, and reports whether the pipeline may
// continue. A job canceled concurrently by the user stops the pipeline here.
func (s *importService) advance(ctx context.Context, job *domain.ImportJob, event domain.ImportEvent) bool {
	current, err := s.jobs.GetByID(ctx, job.UserID, job.ID)
	if err == nil && current.State.Terminal() {
		log.Printf("importService: job %s reached %s mid-pipeline, discarding result", job.ID, current.State)
		return false
	}

	next, err := domain.NextState(job.State, event)
	if err != nil {
		log.Printf("importService.advance: job %s: %v", job.ID, err)
		return false
	}
	job.State = next

	if err := s.jobs.Update(ctx, job); err != nil {
		log.Printf("importService.advance: job %s: %v", job.ID, err)
		return false
	}
	return true
}

func (s *importService) queueForRetry(ctx context.Context, job *domain.ImportJob, rlErr *llm.RateLimitError) {
	next, err := domain.NextState(job.State, domain.EventQueued)
	if err != nil {
		log.Printf("importService.queueForRetry: job %s: %v", job.ID, err)
		return
	}
	job.State = next
	retryAt := time.Now().UTC().Add(rlErr.RetryAfter)
	job.RetryAfter = &retryAt
	job.ErrorCode = errCodeRateLimited
	job.ErrorMessage = rlErr.Error()

	if err := s.jobs.Update(ctx, job); err != nil {
		log.Printf("importService.queueForRetry: job %s: %v", job.ID, err)
		return
	}
	log.Printf("importService: job %s rate limited, queued until %s", job.ID, retryAt.Format(time.RFC3339))
}

// Error codes surfaced to clients on failed jobs.
const (
	errCodeBlockedSource = "BLOCKED_SOURCE"
	errCodeInvalidURL    = "INVALID_URL"
	errCodeExtraction    = "EXTRACTION_FAILED"
	errCodeParse         = "PARSE_FAILED"
	errCodeMatchCatalog  = "MATCH_CATALOG_UNAVAILABLE"
	errCodeRateLimited   = "RATE_LIMITED"
	errCodeInternal      = "INTERNAL"
)

func classifyError(err error) string {
	switch {
	case domain.IsBlockedSource(err):
		return errCodeBlockedSource
	case errors.Is(err, domain.ErrInvalidSourceURL):
		return errCodeInvalidURL
	case errors.Is(err, domain.ErrExtraction):
		return errCodeExtraction
	case errors.Is(err, domain.ErrParse):
		return errCodeParse
	case errors.Is(err, domain.ErrMatchCatalog):
		return errCodeMatchCatalog
	default:
		return errCodeInternal
	}
}

func (s *importService) fail(ctx context.Context, job *domain.ImportJob, cause error) {
	log.Printf("importService: job %s failed in %s: %v", job.ID, job.State, cause)

	next, err := domain.NextState(job.State, domain.EventFailed)
	if err != nil {
		log.Printf("importService.fail: job %s: %v", job.ID, err)
		return
	}
	job.State = next
	job.ErrorCode = classifyError(cause)
	job.ErrorMessage = cause.Error()

	if err := s.jobs.Update(ctx, job); err != nil {
		log.Printf("importService.fail: job %s: %v", job.ID, err)
	}
}

func (s *importService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.ImportJob, error) {
	job, err := s.jobs.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	// Photo jobs carry a short-lived URL so the review surface can show the
	// original photo. A presign failure is logged and the job is returned
	// without it.
	if job.PhotoKey != "" && !job.State.Terminal() {
		url, err := s.storage.GetPresignedURL(ctx, job.PhotoBucket, job.PhotoKey, s.s3Cfg.PresignExpiry)
		if err != nil {
			log.Printf("importService.Get: job %s: presigning photo: %v", job.ID, err)
		} else {
			job.PhotoURL = url
		}
	}
	return job, nil
}

func (s *importService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.ImportJob, int, error) {
	return s.jobs.ListByUser(ctx, userID, offset, limit)
}

func (s *importService) UpdateTitle(ctx context.Context, userID, id uuid.UUID, title string) (*domain.ImportJob, error) {
	job, err := s.jobs.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if job.State != domain.StateReviewing {
		return nil, domain.ErrImportNotReviewable
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrImportNotReviewable)
	}
	job.FinalTitle = title
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("importService.UpdateTitle: %w", err)
	}
	return job, nil
}

func (s *importService) ResolveIngredient(ctx context.Context, userID, id uuid.UUID, index int, input ResolveIngredientInput) (*domain.ImportJob, error) {
	job, err := s.jobs.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if job.State != domain.StateReviewing {
		return nil, domain.ErrImportNotReviewable
	}

	var matches []domain.ProcessedIngredient
	if err := json.Unmarshal(job.Matches, &matches); err != nil {
		return nil, fmt.Errorf("importService.ResolveIngredient: decoding matches: %w", err)
	}
	if index < 0 || index >= len(matches) {
		return nil, fmt.Errorf("%w: ingredient index %d out of range", domain.ErrIngredientNotFound, index)
	}

	var resolvedID uuid.UUID
	switch {
	case input.IngredientID != nil:
		ing, err := s.ingredients.GetByID(ctx, *input.IngredientID)
		if err != nil {
			return nil, err
		}
		resolvedID = ing.ID
	case input.NewIngredient != nil:
		ing := &domain.Ingredient{
			ID:         uuid.New(),
			Name:       strings.ToLower(strings.TrimSpace(input.NewIngredient.Name)),
			PluralName: strings.ToLower(strings.TrimSpace(input.NewIngredient.PluralName)),
			Family:     input.NewIngredient.Family,
			CreatedBy:  &userID,
		}
		if err := s.ingredients.Create(ctx, ing); err != nil {
			return nil, err
		}
		resolvedID = ing.ID
	default:
		return nil, fmt.Errorf("%w: ingredient_id or new_ingredient required", domain.ErrIngredientNotFound)
	}

	matches[index].IngredientID = &resolvedID
	matches[index].NeedsReview = false

	payload, err := json.Marshal(matches)
	if err != nil {
		return nil, fmt.Errorf("importService.ResolveIngredient: %w", err)
	}
	job.Matches = payload
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("importService.ResolveIngredient: %w", err)
	}
	return job, nil
}

func (s *importService) Save(ctx context.Context, userID, id uuid.UUID) (uuid.UUID, error) {
	job, err := s.jobs.GetByID(ctx, userID, id)
	if err != nil {
		return uuid.Nil, err
	}
	if job.State != domain.StateReviewing {
		return uuid.Nil, domain.ErrImportNotReviewable
	}

	var extracted domain.ExtractedRecipeData
	if err := json.Unmarshal(job.Extracted, &extracted); err != nil {
		return uuid.Nil, fmt.Errorf("importService.Save: decoding extraction: %w", err)
	}
	var matches []domain.ProcessedIngredient
	if err := json.Unmarshal(job.Matches, &matches); err != nil {
		return uuid.Nil, fmt.Errorf("importService.Save: decoding matches: %w", err)
	}

	processed := domain.ProcessedRecipe{
		Extracted:        extracted,
		Ingredients:      matches,
		BookID:           job.BookID,
		OwnershipPending: job.SourceType == domain.SourceTypePhoto && job.BookID == nil,
	}
	if unresolved := processed.UnresolvedRequired(); len(unresolved) > 0 {
		return uuid.Nil, fmt.Errorf("%w: line items %v", domain.ErrUnresolvedIngredient, unresolved)
	}

	title := job.FinalTitle
	if title == "" {
		title = extracted.Recipe.Title
	}

	recipe, lineItems := buildRecipeRows(userID, title, job, &processed)
	if err := s.recipes.CreateWithIngredients(ctx, recipe, lineItems); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	// Sections are best-effort enrichment: a failure here is logged and the
	// save still succeeds with the recipe id.
	sections := buildSectionRows(extracted.Sections)
	if err := s.recipes.CreateSections(ctx, recipe.ID, sections); err != nil {
		log.Printf("importService.Save: job %s: instruction sections not saved: %v", job.ID, err)
	}

	job.RecipeID = &recipe.ID
	if !s.advance(ctx, job, domain.EventSaved) {
		// The recipe row is already durable; a state write failure only
		// leaves the job behind, which Get will keep reporting.
		log.Printf("importService.Save: job %s saved recipe %s but state update failed", job.ID, recipe.ID)
	}
	return recipe.ID, nil
}

func (s *importService) Cancel(ctx context.Context, userID, id uuid.UUID) error {
	job, err := s.jobs.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	next, err := domain.NextState(job.State, domain.EventCanceled)
	if err != nil {
		return err
	}
	job.State = next
	if err := s.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("importService.Cancel: %w", err)
	}

	if job.PhotoKey != "" {
		if err := s.storage.Delete(ctx, job.PhotoBucket, job.PhotoKey); err != nil {
			log.Printf("importService.Cancel: job %s: deleting photo: %v", job.ID, err)
		}
	}
	return nil
}

func (s *importService) Retry(ctx context.Context, userID, id uuid.UUID) (*domain.ImportJob, error) {
	job, err := s.jobs.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if job.State != domain.StateFailed && job.State != domain.StateQueued {
		return nil, domain.ErrImportNotRetryable
	}

	next, err := domain.NextState(job.State, domain.EventRetried)
	if err != nil {
		return nil, domain.ErrImportNotRetryable
	}
	job.State = next
	job.ErrorCode = ""
	job.ErrorMessage = ""
	job.RetryAfter = nil
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("importService.Retry: %w", err)
	}

	j := *job
	go func() {
		pipelineCtx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
		defer cancel()
		s.RunPipeline(pipelineCtx, &j)
	}()
	return job, nil
}

func (s *importService) checkBook(ctx context.Context, bookID *uuid.UUID) error {
	if bookID == nil {
		return nil
	}
	_, err := s.books.GetByID(ctx, *bookID)
	return err
}

func buildRecipeRows(userID uuid.UUID, title string, job *domain.ImportJob, processed *domain.ProcessedRecipe) (*domain.Recipe, []domain.RecipeIngredient) {
	core := processed.Extracted.Recipe
	diff := processed.Extracted.Difficulty

	var rawSnapshot json.RawMessage
	if processed.Extracted.Raw != nil {
		rawSnapshot, _ = json.Marshal(processed.Extracted.Raw)
	}

	recipe := &domain.Recipe{
		ID:                  uuid.New(),
		OwnerID:             userID,
		Title:               title,
		Description:         core.Description,
		SourceAuthor:        core.SourceAuthor,
		SourceURL:           job.SourceURL,
		ImageURL:            core.ImageURL,
		Servings:            core.Servings,
		PrepTimeMin:         core.PrepTimeMin,
		CookTimeMin:         core.CookTimeMin,
		InactiveTimeMin:     core.InactiveTimeMin,
		TotalTimeMin:        core.TotalTimeMin,
		CuisineTypes:        domain.StringList(core.CuisineTypes),
		MealTypes:           domain.StringList(core.MealTypes),
		DietaryTags:         domain.StringList(core.DietaryTags),
		CookingMethods:      domain.StringList(core.CookingMethods),
		DifficultyLevel:     diff.Level,
		DifficultyScore:     diff.Score,
		DifficultyFactors:   domain.StringList(diff.Factors),
		DifficultyReasoning: diff.Reasoning,
		BookID:              processed.BookID,
		OwnershipPending:    processed.OwnershipPending,
		RawExtraction:       rawSnapshot,
	}

	lineItems := make([]domain.RecipeIngredient, 0, len(processed.Ingredients))
	for _, ing := range processed.Ingredients {
		lineItems = append(lineItems, domain.RecipeIngredient{
			ID:             uuid.New(),
			RecipeID:       recipe.ID,
			IngredientID:   ing.IngredientID,
			OriginalText:   ing.OriginalText,
			QuantityAmount: ing.QuantityAmount,
			QuantityUnit:   ing.QuantityUnit,
			IngredientName: ing.IngredientName,
			Preparation:    ing.Preparation,
			SequenceOrder:  ing.SequenceOrder,
			IsOptional:     ing.IsOptional,
			NeedsReview:    ing.NeedsReview,
		})
	}
	return recipe, lineItems
}

func buildSectionRows(sections []domain.ExtractedSection) []domain.InstructionSection {
	rows := make([]domain.InstructionSection, 0, len(sections))
	for _, sec := range sections {
		row := domain.InstructionSection{
			ID:               uuid.New(),
			Title:            sec.Title,
			Description:      sec.Description,
			SectionOrder:     sec.Order,
			EstimatedTimeMin: sec.EstimatedTimeMin,
		}
		for _, step := range sec.Steps {
			row.Steps = append(row.Steps, domain.InstructionStep{
				ID:              uuid.New(),
				StepNumber:      step.StepNumber,
				Instruction:     step.Instruction,
				IsOptional:      step.IsOptional,
				IsTimeSensitive: step.IsTimeSensitive,
			})
		}
		rows = append(rows, row)
	}
	return rows
}
