package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/ecyouth/portal/internal/middleware"
	"github.com/ecyouth/portal/internal/models"
	"github.com/gin-gonic/gin"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"", 1, 20, 0},
		{"page=3&limit=10", 3, 10, 20},
		{"page=0&limit=-5", 1, 20, 0},
		{"limit=500", 1, 100, 0},
		{"page=abc", 1, 20, 0},
	}

	for _, tc := range cases {
		ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
		ctx.Request = httptest.NewRequest("GET", "/?"+tc.query, nil)

		page, limit, offset := ParsePagination(ctx, 20, 100)
		if page != tc.wantPage || limit != tc.wantLimit || offset != tc.wantOffset {
			t.Errorf("ParsePagination(%q) = (%d, %d, %d), want (%d, %d, %d)",
				tc.query, page, limit, offset, tc.wantPage, tc.wantLimit, tc.wantOffset)
		}
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 0, 0},
	}

	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.limit); got != tc.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}

func TestCanModerate(t *testing.T) {
	admin := middleware.AuthenticatedUser{ID: 1, Role: models.RoleAdmin}
	owner := middleware.AuthenticatedUser{ID: 2, Role: models.RoleUser}
	other := middleware.AuthenticatedUser{ID: 3, Role: models.RoleStakeholder}

	if !CanModerate(admin, 99) {
		t.Error("admin should moderate any resource")
	}

	if !CanModerate(owner, 2) {
		t.Error("owner should moderate their own resource")
	}

	if CanModerate(other, 2) {
		t.Error("non-owner non-admin should not moderate")
	}
}
