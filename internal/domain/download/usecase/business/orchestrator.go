// Package business contains the download pipeline
package business

import (
	"context"
	"fmt"
	"html"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/patt509/YT-Downloader/config"
	"github.com/patt509/YT-Downloader/internal/domain/download/consts"
	"github.com/patt509/YT-Downloader/internal/domain/download/deps"
	"github.com/patt509/YT-Downloader/internal/domain/download/dto"
	"github.com/patt509/YT-Downloader/internal/domain/download/entities"
	downloaderrors "github.com/patt509/YT-Downloader/internal/domain/download/errors"
	"github.com/patt509/YT-Downloader/internal/domain/download/storage"
	pkgerrors "github.com/patt509/YT-Downloader/pkg/errors"
)

// Policy holds the limits applied to every operation
type Policy struct {
	OperationTimeout time.Duration
	DeliveryTimeout  time.Duration
	MaxVideoDuration time.Duration
	ProgressInterval time.Duration
}

// DefaultPolicy returns the production limits
func DefaultPolicy() Policy {
	return Policy{
		OperationTimeout: consts.DefaultOperationTimeout,
		DeliveryTimeout:  consts.DefaultDeliveryTimeout,
		MaxVideoDuration: consts.DefaultMaxVideoDuration,
		ProgressInterval: consts.DefaultProgressInterval,
	}
}

// PolicyFromConfig builds the policy from the download settings
func PolicyFromConfig(cfg *config.DownloadConfig) Policy {
	return Policy{
		OperationTimeout: cfg.OperationTimeout,
		DeliveryTimeout:  cfg.DeliveryTimeout,
		MaxVideoDuration: cfg.MaxVideoDuration,
		ProgressInterval: cfg.ProgressInterval,
	}
}

// Orchestrator runs one download or offer operation per request
type Orchestrator struct {
	resolver  deps.MediaResolver
	transport deps.Transport
	publisher deps.OutcomePublisher
	metrics   deps.MetricsRecorder
	files     *storage.FileStore
	courtesy  map[string]string
	policy    Policy
	logger    zerolog.Logger
}

// NewOrchestrator creates a new Orchestrator.
// The transport is set later with SetTransport because the Telegram handlers
// depend on the orchestrator themselves.
func NewOrchestrator(
	resolver deps.MediaResolver,
	publisher deps.OutcomePublisher,
	metrics deps.MetricsRecorder,
	files *storage.FileStore,
	courtesy map[string]string,
	policy Policy,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		resolver:  resolver,
		publisher: publisher,
		metrics:   metrics,
		files:     files,
		courtesy:  courtesy,
		policy:    policy,
		logger:    logger,
	}
}

// SetTransport sets the messaging side after construction
func (o *Orchestrator) SetTransport(transport deps.Transport) {
	o.transport = transport
}

// HandleStart returns the greeting for /start
func (o *Orchestrator) HandleStart(ctx context.Context, user entities.UserIdentity) *dto.CommandResponse {
	o.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("User started bot")

	return &dto.CommandResponse{Message: consts.MessageGreeting}
}

// HandleHelp returns the usage text for /help
func (o *Orchestrator) HandleHelp(ctx context.Context) *dto.CommandResponse {
	return &dto.CommandResponse{Message: consts.MessageGreeting}
}

// HandleRequest dispatches an inbound request and returns its outcome
func (o *Orchestrator) HandleRequest(ctx context.Context, req dto.Request) Outcome {
	switch r := req.(type) {
	case dto.DirectLinkRequest:
		link := ExtractLink(r.Text)
		if IsMusicLink(link) {
			return o.Download(ctx, dto.DownloadRequest{
				URL:         link,
				Kind:        entities.KindAudio,
				Destination: r.Chat,
				Requester:   r.Sender,
			})
		}
		return o.Offer(ctx, link, r.Chat, r.Sender)

	case dto.FormatChoiceRequest:
		return o.Download(ctx, dto.DownloadRequest{
			URL:         r.URL,
			Kind:        r.Kind,
			Destination: r.Chat,
			Requester:   r.Sender,
		})

	default:
		o.logger.Error().Str("type", fmt.Sprintf("%T", req)).Msg("Unknown request type")
		return OutcomeInvalidLink
	}
}

// Download runs the full pipeline for one kind: validate, resolve, check
// duration, select, materialize, deliver and clean up. Exactly one outcome
// notification reaches the chat and no file outlives the call.
func (o *Orchestrator) Download(ctx context.Context, req dto.DownloadRequest) Outcome {
	op := o.newOperation(string(req.Kind), req.Destination, req.Requester)

	op.stage(StageValidating)
	if !IsAcceptedLink(req.URL) || !req.Kind.Valid() {
		o.reject(ctx, op)
		return o.finish(ctx, op, OutcomeInvalidLink, downloaderrors.ErrInvalidLink, nil)
	}

	note := o.post(ctx, op)
	res := o.runBounded(ctx, op, note, o.downloadWork(req, op))
	outcome := classify(res.err)

	fctx, cancel := finalizeContext(ctx)
	defer cancel()

	switch {
	case outcome == OutcomeSuccess:
		o.succeed(fctx, op, note)
	case outcome == OutcomeVideoTooLong && res.info != nil:
		// a stale video button; the audio is still on offer
		o.refuseTooLong(fctx, op, note, res.info, AvailableKinds(res.info))
	default:
		o.fail(fctx, op, note, o.failureText(outcome, req.Kind, res.info))
	}

	return o.finish(fctx, op, outcome, res.err, res.info)
}

// Offer resolves a link and turns the placeholder into a format choice
func (o *Orchestrator) Offer(ctx context.Context, link string, chat entities.ChatIdentity, user entities.UserIdentity) Outcome {
	op := o.newOperation("offer", chat, user)

	op.stage(StageValidating)
	if !IsAcceptedLink(link) {
		o.reject(ctx, op)
		return o.finish(ctx, op, OutcomeInvalidLink, downloaderrors.ErrInvalidLink, nil)
	}

	note := o.post(ctx, op)
	res := o.runBounded(ctx, op, note, o.offerWork(link, op))
	outcome, err := classify(res.err), res.err

	fctx, cancel := finalizeContext(ctx)
	defer cancel()

	switch {
	case outcome == OutcomeSuccess:
		offer := dto.ChoiceOffer{
			Text:    choiceText(res.info),
			VideoID: res.info.ID,
			Kinds:   res.kinds,
		}
		if err = note.offer(fctx, o.transport, offer); err != nil {
			op.logger.Error().Err(err).Msg("Failed to present format choice")
			outcome = OutcomeResolutionFailed
			o.fail(fctx, op, note, consts.MessageGenericError)
		} else {
			outcome = OutcomeOffered
		}

	case outcome == OutcomeVideoTooLong && res.info != nil:
		o.refuseTooLong(fctx, op, note, res.info, res.kinds)

	default:
		o.fail(fctx, op, note, o.failureText(outcome, "", res.info))
	}

	return o.finish(fctx, op, outcome, err, res.info)
}

// result is what a worker hands back to the operation's main loop
type result struct {
	info  *entities.MediaInfo
	kinds []entities.RequestedKind
	err   error
}

type work func(ctx context.Context, report func(text string)) result

// runBounded runs w on a worker goroutine under the operation deadline.
// When the deadline fires first the worker is abandoned: its context is
// cancelled, the operation's files are released right away and released again
// by the worker once its blocking call returns.
func (o *Orchestrator) runBounded(ctx context.Context, op *operation, note *placeholder, w work) result {
	opCtx, cancel := context.WithTimeout(ctx, o.policy.OperationTimeout)
	defer cancel()

	done := make(chan result, 1)
	progress := make(chan string, 4)
	report := func(text string) {
		select {
		case progress <- text:
		default:
		}
	}

	go func() {
		var res result
		defer func() {
			if r := recover(); r != nil {
				op.logger.Error().Interface("panic", r).Msg("Download worker panicked")
				res = result{err: fmt.Errorf("%w: panic: %v", downloaderrors.ErrResolutionFailed, r)}
			}
			o.cleanup(op)
			done <- res
		}()
		res = w(opCtx, report)
	}()

	for {
		select {
		case text := <-progress:
			if err := note.progress(opCtx, text); err != nil {
				op.logger.Debug().Err(err).Msg("Failed to edit progress")
			}

		case res := <-done:
			return settle(opCtx, res)

		case <-opCtx.Done():
			// prefer a result that raced with the deadline
			select {
			case res := <-done:
				return settle(opCtx, res)
			default:
			}

			op.logger.Warn().
				Err(opCtx.Err()).
				Dur("timeout", o.policy.OperationTimeout).
				Msg("Operation deadline exceeded, abandoning worker")
			op.stage(StageCleaning)
			o.cleanup(op)
			return result{err: fmt.Errorf("%w: %w", downloaderrors.ErrTimeout, opCtx.Err())}
		}
	}
}

// settle marks a failure as a timeout when the deadline had already fired
func settle(opCtx context.Context, res result) result {
	if res.err != nil && opCtx.Err() != nil {
		res.err = fmt.Errorf("%w: %w", downloaderrors.ErrTimeout, res.err)
	}
	return res
}

func (o *Orchestrator) downloadWork(req dto.DownloadRequest, op *operation) work {
	return func(ctx context.Context, report func(string)) result {
		op.stage(StageResolving)
		info, err := o.resolver.Resolve(ctx, req.URL)
		if err != nil {
			return result{err: fmt.Errorf("%w: resolve: %w", downloaderrors.ErrResolutionFailed, err)}
		}
		res := result{info: info}

		if req.Kind == entities.KindVideo && info.Duration > o.policy.MaxVideoDuration {
			res.err = downloaderrors.ErrVideoTooLong
			return res
		}

		op.stage(StageSelecting)
		stream, ok := SelectStream(info, req.Kind)
		if !ok {
			res.err = downloaderrors.ErrNoStreamAvailable
			return res
		}
		if err := ctx.Err(); err != nil {
			res.err = err
			return res
		}

		op.stage(StageMaterializing)
		report(consts.MessageDownloading)
		file := o.files.Acquire(info.ID, stream.Container)
		op.files.add(file)

		if err := o.resolver.Materialize(ctx, info, stream, file.Path()); err != nil {
			res.err = fmt.Errorf("%w: materialize: %w", downloaderrors.ErrResolutionFailed, err)
			return res
		}

		path, ext := file.Path(), consts.VideoExtension
		if req.Kind == entities.KindAudio {
			ext = consts.AudioExtension
			if path, err = file.RenameExt(ext); err != nil {
				res.err = fmt.Errorf("%w: rename: %w", downloaderrors.ErrResolutionFailed, err)
				return res
			}
		}
		if err := ctx.Err(); err != nil {
			res.err = err
			return res
		}

		op.stage(StageDelivering)
		report(consts.MessageUploading)
		res.err = o.deliver(ctx, req, info, path, ext)
		return res
	}
}

func (o *Orchestrator) offerWork(link string, op *operation) work {
	return func(ctx context.Context, _ func(string)) result {
		op.stage(StageResolving)
		info, err := o.resolver.Resolve(ctx, link)
		if err != nil {
			return result{err: fmt.Errorf("%w: resolve: %w", downloaderrors.ErrResolutionFailed, err)}
		}

		op.stage(StageSelecting)
		kinds := AvailableKinds(info)

		if info.Duration > o.policy.MaxVideoDuration {
			return result{info: info, kinds: kinds, err: downloaderrors.ErrVideoTooLong}
		}

		if len(kinds) == 0 {
			return result{info: info, err: downloaderrors.ErrNoStreamAvailable}
		}

		return result{info: info, kinds: kinds}
	}
}

// deliver opens the finished file and hands it to the transport
func (o *Orchestrator) deliver(ctx context.Context, req dto.DownloadRequest, info *entities.MediaInfo, path, ext string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open: %w", downloaderrors.ErrResolutionFailed, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat: %w", downloaderrors.ErrResolutionFailed, err)
	}

	media := entities.MediaFile{
		Name:   SanitizeFilename(info.Title) + ext,
		Size:   stat.Size(),
		Reader: f,
	}

	sendCtx, cancel := context.WithTimeout(ctx, o.policy.DeliveryTimeout)
	defer cancel()

	switch req.Kind {
	case entities.KindAudio:
		err = o.transport.SendAudio(sendCtx, dto.AudioDelivery{
			Chat:     req.Destination,
			File:     media,
			Title:    info.Title,
			Duration: info.DurationSeconds(),
		})
	default:
		err = o.transport.SendVideo(sendCtx, dto.VideoDelivery{
			Chat:     req.Destination,
			File:     media,
			Title:    info.Title,
			Duration: info.DurationSeconds(),
		})
	}
	if err != nil {
		return fmt.Errorf("%w: %w", downloaderrors.ErrDeliveryFailed, err)
	}

	return nil
}

func (o *Orchestrator) reject(ctx context.Context, op *operation) {
	op.logger.Info().Msg("Rejected invalid link")
	if _, err := o.transport.Post(ctx, op.chat, consts.MessageInvalidLink); err != nil {
		op.logger.Error().Err(err).Msg("Failed to send invalid link message")
	}
}

func (o *Orchestrator) post(ctx context.Context, op *operation) *placeholder {
	limiter := rate.NewLimiter(rate.Every(o.policy.ProgressInterval), 1)
	note, err := postPlaceholder(ctx, o.transport, op.chat, consts.MessageProcessing, limiter)
	if err != nil {
		op.logger.Error().Err(err).Msg("Failed to post placeholder")
	}
	return note
}

func (o *Orchestrator) succeed(ctx context.Context, op *operation, note *placeholder) {
	if err := note.succeed(ctx); err != nil {
		op.logger.Error().Err(err).Msg("Failed to delete placeholder")
	}

	msg, ok := o.courtesy[config.NormalizeUsername(op.user.Username)]
	if !ok || op.user.Username == "" {
		return
	}
	// operator text, posted in HTML mode
	if _, err := o.transport.Post(ctx, op.chat, html.EscapeString(msg)); err != nil {
		op.logger.Warn().Err(err).Msg("Failed to send courtesy message")
	}
}

func (o *Orchestrator) fail(ctx context.Context, op *operation, note *placeholder, text string) {
	if err := note.fail(ctx, text); err != nil {
		op.logger.Error().Err(err).Msg("Failed to edit placeholder")
	}
}

// refuseTooLong shows the duration refusal, with an audio button when the
// content has an audio stream
func (o *Orchestrator) refuseTooLong(ctx context.Context, op *operation, note *placeholder, info *entities.MediaInfo, kinds []entities.RequestedKind) {
	if !slices.Contains(kinds, entities.KindAudio) {
		o.fail(ctx, op, note, o.tooLongText(info, false))
		return
	}

	offer := dto.ChoiceOffer{
		Text:    o.tooLongText(info, true),
		VideoID: info.ID,
		Kinds:   []entities.RequestedKind{entities.KindAudio},
	}
	if err := note.offer(ctx, o.transport, offer); err != nil {
		op.logger.Error().Err(err).Msg("Failed to present audio choice")
		o.fail(ctx, op, note, o.tooLongText(info, false))
	}
}

// finish records the outcome and publishes it; neither may change it
func (o *Orchestrator) finish(ctx context.Context, op *operation, outcome Outcome, err error, info *entities.MediaInfo) Outcome {
	op.stage(StageTerminal)
	elapsed := time.Since(op.started)

	o.metrics.RecordOperationFinished(op.kind, string(outcome), elapsed.Seconds())

	event := op.logger.Info()
	if outcome.Failed() {
		event = op.logger.Warn()
	}
	var errorType string
	if err != nil {
		errorType = pkgerrors.TypeOf(err).String()
		event = event.Err(err).Str("error_type", errorType)
	}
	event.Str("outcome", string(outcome)).Dur("elapsed", elapsed).Msg("Operation finished")

	outcomeEvent := dto.OutcomeEvent{
		OperationID: op.id,
		UserID:      op.user.ID,
		ChatID:      op.chat.ID,
		Kind:        op.kind,
		Outcome:     string(outcome),
		ElapsedMs:   elapsed.Milliseconds(),
		ErrorType:   errorType,
		FinishedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if info != nil {
		outcomeEvent.Title = info.Title
		outcomeEvent.DurationSeconds = info.DurationSeconds()
	}
	if err := o.publisher.PublishOutcome(ctx, outcomeEvent); err != nil {
		op.logger.Warn().Err(err).Msg("Failed to publish outcome event")
	}

	return outcome
}

func (o *Orchestrator) cleanup(op *operation) {
	for _, err := range op.files.release() {
		o.metrics.RecordCleanupError()
		op.logger.Error().Err(err).Msg("Failed to remove temp file")
	}
}

func (o *Orchestrator) newOperation(kind string, chat entities.ChatIdentity, user entities.UserIdentity) *operation {
	id := uuid.NewString()
	o.metrics.RecordOperationStarted(kind)

	return &operation{
		id:      id,
		kind:    kind,
		chat:    chat,
		user:    user,
		started: time.Now(),
		logger: o.logger.With().
			Str("operation_id", id).
			Str("kind", kind).
			Int64("chat_id", chat.ID).
			Int64("user_id", user.ID).
			Logger(),
	}
}

// finalizeContext outlives the request context so the placeholder still gets
// its terminal edit after a timeout or shutdown
func finalizeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), consts.FinalizeTimeout)
}

func choiceText(info *entities.MediaInfo) string {
	return fmt.Sprintf("<b>%s</b> (%s)\n%s", html.EscapeString(info.Title), FormatClock(info.Duration), consts.MessageChooseFormat)
}

type operation struct {
	id      string
	kind    string
	chat    entities.ChatIdentity
	user    entities.UserIdentity
	started time.Time
	files   fileSet
	logger  zerolog.Logger
}

func (op *operation) stage(s Stage) {
	op.logger.Debug().Str("stage", string(s)).Msg("Stage entered")
}

// fileSet is every temp file an operation acquired
type fileSet struct {
	mu    sync.Mutex
	files []*storage.File
}

func (s *fileSet) add(f *storage.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, f)
}

func (s *fileSet) release() []error {
	s.mu.Lock()
	files := make([]*storage.File, len(s.files))
	copy(files, s.files)
	s.mu.Unlock()

	var errs []error
	for _, f := range files {
		if err := f.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
