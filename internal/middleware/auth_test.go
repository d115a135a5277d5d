package middleware

import (
	"errors"
	"testing"

	"github.com/ecyouth/portal/internal/models"
)

func TestAccountAccessError(t *testing.T) {
	active := &models.User{IsActive: true}
	if err := AccountAccessError(active); err != nil {
		t.Errorf("active account blocked: %v", err)
	}

	deactivated := &models.User{IsActive: false}
	if err := AccountAccessError(deactivated); !errors.Is(err, ErrAccountDeactivated) {
		t.Errorf("got %v, want ErrAccountDeactivated", err)
	}

	suspended := &models.User{IsActive: true, IsSuspended: true, SuspensionReason: "spam"}
	if err := AccountAccessError(suspended); !errors.Is(err, ErrAccountSuspended) {
		t.Errorf("got %v, want ErrAccountSuspended", err)
	}

	// Deactivation outranks suspension when both are set
	both := &models.User{IsActive: false, IsSuspended: true}
	if err := AccountAccessError(both); !errors.Is(err, ErrAccountDeactivated) {
		t.Errorf("got %v, want ErrAccountDeactivated", err)
	}
}
