package business

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/patt509/YT-Downloader/internal/domain/download/deps"
	"github.com/patt509/YT-Downloader/internal/domain/download/dto"
	"github.com/patt509/YT-Downloader/internal/domain/download/entities"
)

type placeholderState int

const (
	placeholderAbsent placeholderState = iota
	placeholderPosted
	placeholderEdited
	placeholderDeleted
)

// placeholder is the "Processing..." message of one operation. It moves from
// posted to exactly one of edited or deleted. It is only touched by the
// goroutine that runs the operation's main loop.
type placeholder struct {
	sink    deps.NotificationSink
	ref     entities.NotificationRef
	state   placeholderState
	limiter *rate.Limiter
}

func postPlaceholder(ctx context.Context, sink deps.NotificationSink, chat entities.ChatIdentity, text string, limiter *rate.Limiter) (*placeholder, error) {
	p := &placeholder{sink: sink, limiter: limiter}

	ref, err := sink.Post(ctx, chat, text)
	if err != nil {
		return p, fmt.Errorf("failed to post placeholder: %w", err)
	}

	p.ref = ref
	p.state = placeholderPosted
	// the post itself spends the first token
	limiter.Allow()

	return p, nil
}

// progress edits a non-terminal status text, dropping it when edits come too fast
func (p *placeholder) progress(ctx context.Context, text string) error {
	if p.state != placeholderPosted || !p.limiter.Allow() {
		return nil
	}
	return p.sink.Edit(ctx, p.ref, text)
}

// fail moves the placeholder to its terminal error text
func (p *placeholder) fail(ctx context.Context, text string) error {
	if p.state != placeholderPosted {
		return nil
	}
	p.state = placeholderEdited
	return p.sink.Edit(ctx, p.ref, text)
}

// offer moves the placeholder to a terminal choice message
func (p *placeholder) offer(ctx context.Context, presenter deps.ChoicePresenter, offer dto.ChoiceOffer) error {
	if p.state != placeholderPosted {
		return nil
	}
	if err := presenter.Offer(ctx, p.ref, offer); err != nil {
		// still posted, the caller falls back to fail
		return err
	}
	p.state = placeholderEdited
	return nil
}

// succeed removes the placeholder; its absence tells the user the file arrived
func (p *placeholder) succeed(ctx context.Context) error {
	if p.state != placeholderPosted {
		return nil
	}
	p.state = placeholderDeleted
	return p.sink.Delete(ctx, p.ref)
}
