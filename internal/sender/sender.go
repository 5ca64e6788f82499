// Package sender handles a single send request end to end: resolve the
// target, check it still exists, type the text, remember the target.
package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/timvw/pane-send/internal/dispatch"
	"github.com/timvw/pane-send/internal/history"
	"github.com/timvw/pane-send/internal/model"
	"github.com/timvw/pane-send/internal/mux"
	psotel "github.com/timvw/pane-send/internal/otel"
)

var tracer = otel.Tracer("pane-send")

// ErrNoTarget is returned when a target is needed but none is configured,
// remembered, or pickable.
var ErrNoTarget = errors.New("no target: pass --target, configure a default, or run interactively")

// Picker lets the user choose a target interactively. ok is false when the
// user cancelled.
type Picker interface {
	Pick(ctx context.Context, recent []model.Target) (target model.Target, ok bool, err error)
}

// Settings are the configured send behaviour.
type Settings struct {
	DefaultTarget model.Target // zero means none
	FinalKeys     string       // comma separated key names
	Confirm       bool         // always pick before sending
	Remember      bool         // add successful targets to history
}

// Request is one send. Target, when set, bypasses resolution.
type Request struct {
	Text         string
	ForceConfirm bool
	Target       model.Target
}

// Handler wires the gateway, dispatcher, history and picker together.
type Handler struct {
	Mux        mux.Multiplexer
	Dispatcher *dispatch.Dispatcher
	History    history.Store
	Picker     Picker // nil when not interactive
	Settings   Settings
	Metrics    *psotel.Metrics // nil-safe
	Logger     *slog.Logger
}

// HandleSendRequest runs the whole send flow. Every outcome, including
// failures, is reported through the Result.
func (h *Handler) HandleSendRequest(ctx context.Context, req Request) Result {
	res := Result{RequestID: uuid.NewString()}
	log := h.logger().With("request_id", res.RequestID)

	ctx, span := tracer.Start(ctx, "send",
		trace.WithAttributes(
			attribute.String("request.id", res.RequestID),
			attribute.String("mux", h.Mux.Name()),
			attribute.Int("text.bytes", len(req.Text)),
			attribute.Bool("confirm", req.ForceConfirm || h.Settings.Confirm),
		))
	defer span.End()

	defer func() {
		span.SetAttributes(attribute.String("send.result", res.Kind.String()))
		if res.Err != nil && res.Kind != Cancelled {
			span.SetStatus(codes.Error, res.Err.Error())
		}
		h.Metrics.RecordSend(ctx, res.Kind.String())
		log.Debug("send finished", "result", res.Kind.String(), "target", res.Target.String())
	}()

	if !h.Mux.Available() {
		res.Kind, res.Err = ToolUnavailable, mux.ErrUnavailable
		return res
	}
	if strings.TrimSpace(req.Text) == "" {
		res.Kind, res.Err = EmptyInput, dispatch.ErrEmptyInput
		return res
	}

	target, ok, err := h.resolve(ctx, req.Target, req.ForceConfirm)
	switch {
	case err != nil:
		res.Kind, res.Err = TargetNotFound, err
		return res
	case !ok:
		res.Kind = Cancelled
		return res
	}
	res.Target = target
	span.SetAttributes(attribute.String("target", target.String()))

	if !h.Mux.Exists(ctx, target) {
		res.Kind, res.Err = TargetNotFound, fmt.Errorf("%w: %s", mux.ErrTargetNotFound, target)
		return res
	}

	report, err := h.Dispatcher.Send(ctx, target, req.Text, h.Settings.FinalKeys)
	res.Report = report
	h.Metrics.RecordInjections(ctx, int64(report.Injections-report.KeysSent), int64(report.KeysSent))
	span.SetAttributes(
		attribute.Int("lines", report.Lines),
		attribute.Int("injections", report.Injections),
	)
	if err != nil {
		if errors.Is(err, dispatch.ErrEmptyInput) {
			res.Kind = EmptyInput
		} else {
			res.Kind = DispatchFailed
			log.Warn("send failed", "target", target.String(), "lines_sent", report.LinesSent, "lines", report.Lines, "error", err)
		}
		res.Err = err
		return res
	}

	h.remember(target, log)
	res.Kind = OK
	return res
}

// HandleSelectRequest lets the user pick a target and remembers it.
func (h *Handler) HandleSelectRequest(ctx context.Context) Result {
	res := Result{RequestID: uuid.NewString()}
	log := h.logger().With("request_id", res.RequestID)

	if !h.Mux.Available() {
		res.Kind, res.Err = ToolUnavailable, mux.ErrUnavailable
		return res
	}
	target, ok, err := h.pick(ctx)
	switch {
	case err != nil:
		res.Kind, res.Err = TargetNotFound, err
	case !ok:
		res.Kind = Cancelled
	default:
		res.Kind, res.Target, res.Selected = OK, target, true
		h.remember(target, log)
	}
	return res
}

// ClearHistory forgets all remembered targets.
func (h *Handler) ClearHistory() error {
	if h.History == nil {
		return nil
	}
	return h.History.Clear()
}

// resolve picks the target for a send: an explicit one, else the
// configured default, else the last used one. The picker runs when none of
// those exist or confirmation is requested.
func (h *Handler) resolve(ctx context.Context, explicit model.Target, forceConfirm bool) (model.Target, bool, error) {
	if !explicit.IsZero() {
		if err := explicit.Validate(); err != nil {
			return model.Target{}, false, err
		}
		h.Metrics.RecordResolution(ctx, "explicit")
		return explicit, true, nil
	}

	target, outcome := h.Settings.DefaultTarget, "default"
	if target.IsZero() && h.History != nil {
		if last, ok := history.Last(h.History); ok {
			target, outcome = last, "last_used"
		}
	}
	if !target.IsZero() && !h.Settings.Confirm && !forceConfirm {
		h.Metrics.RecordResolution(ctx, outcome)
		return target, true, nil
	}
	return h.pick(ctx)
}

func (h *Handler) pick(ctx context.Context) (model.Target, bool, error) {
	ctx, span := tracer.Start(ctx, "resolve")
	defer span.End()

	if h.Picker == nil {
		span.SetStatus(codes.Error, ErrNoTarget.Error())
		return model.Target{}, false, ErrNoTarget
	}
	var recent []model.Target
	if h.History != nil {
		recent = h.History.Recent()
	}
	target, ok, err := h.Picker.Pick(ctx, recent)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return model.Target{}, false, fmt.Errorf("failed to select target: %w", err)
	}
	if !ok {
		h.Metrics.RecordResolution(ctx, "cancelled")
		return model.Target{}, false, nil
	}
	if err := target.Validate(); err != nil {
		return model.Target{}, false, err
	}
	span.SetAttributes(attribute.String("target", target.String()))
	h.Metrics.RecordResolution(ctx, "picked")
	return target, true, nil
}

func (h *Handler) remember(target model.Target, log *slog.Logger) {
	if h.History == nil || !h.Settings.Remember {
		return
	}
	// History is a convenience; a failed write never fails the send.
	if err := h.History.Add(target); err != nil {
		log.Warn("could not remember target", "target", target.String(), "error", err)
	}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
