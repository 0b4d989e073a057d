package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iwa-store/user-service/internal/application"
)

var (
	// ErrMalformedEnvelope reports a payload that could not be parsed or is
	// missing required fields. It is surfaced and logged, never swallowed.
	ErrMalformedEnvelope = errors.New("malformed event envelope")
	// ErrUnknownEvent reports an envelope whose kind is outside the closed
	// set. It is logged with the offending kind and then dropped.
	ErrUnknownEvent = errors.New("unknown event kind")
)

// Dispatcher decodes inbound envelopes and routes them to the account
// service. Add and remove are distinct, membership-aware operations: a
// remove for a product the user never added is a logged no-op, not a flip.
type Dispatcher struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewDispatcher(svc *application.Service, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{Svc: svc, Logger: logger}
}

// Dispatch parses body and applies the matching mutation. Parse failures and
// missing fields return ErrMalformedEnvelope; an unrecognized event kind
// returns ErrUnknownEvent after being logged.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if d.Logger != nil {
			d.Logger.WithError(err).Error("event envelope parse failed")
		}
		return fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.Data.UserID == "" {
		return fmt.Errorf("%w: missing userId", ErrMalformedEnvelope)
	}

	kind := ParseKind(env.Event)
	if d.Logger != nil {
		d.Logger.WithFields(logrus.Fields{"event": env.Event, "user_id": env.Data.UserID}).
			Debug("dispatching user event")
	}

	switch kind {
	case KindAddToWishlist:
		if env.Data.Product == nil {
			return fmt.Errorf("%w: %s without product", ErrMalformedEnvelope, env.Event)
		}
		_, err := d.Svc.AddToWishlist(ctx, env.Data.UserID, env.Data.Product.wishlistItem())
		return err

	case KindRemoveFromWishlist:
		if env.Data.Product == nil {
			return fmt.Errorf("%w: %s without product", ErrMalformedEnvelope, env.Event)
		}
		_, err := d.Svc.RemoveFromWishlist(ctx, env.Data.UserID, env.Data.Product.ID)
		return err

	case KindAddToCart:
		if env.Data.Product == nil {
			return fmt.Errorf("%w: %s without product", ErrMalformedEnvelope, env.Event)
		}
		_, err := d.Svc.SetCartQuantity(ctx, env.Data.UserID, env.Data.Product.cartProduct(), env.Data.Qty)
		return err

	case KindRemoveFromCart:
		if env.Data.Product == nil {
			return fmt.Errorf("%w: %s without product", ErrMalformedEnvelope, env.Event)
		}
		_, err := d.Svc.RemoveCartLine(ctx, env.Data.UserID, env.Data.Product.ID)
		return err

	case KindCreateOrder:
		if env.Data.Order == nil {
			return fmt.Errorf("%w: %s without order", ErrMalformedEnvelope, env.Event)
		}
		_, err := d.Svc.AttachOrder(ctx, env.Data.UserID, *env.Data.Order)
		return err

	default:
		if d.Logger != nil {
			d.Logger.WithField("event", env.Event).Warn("dropping envelope with unknown event kind")
		}
		return fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}
