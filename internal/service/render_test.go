package service

import (
	"database/sql"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/falco-social/falco/internal/db"
	"github.com/falco-social/falco/internal/models"
)

func TestRenderPost(t *testing.T) {
	created := time.Date(2024, 5, 12, 9, 30, 0, 0, time.UTC)
	row := &db.PostRow{
		ID:             7,
		Title:          "Falcons",
		Preview:        "https://img.example/falcon.png",
		Content:        `[{"type":"text","content":"hello"}]`,
		CreatedAt:      created,
		AccountID:      3,
		AuthorNickname: "peregrine",
		AuthorAvatarURL: sql.NullString{
			String: "https://img.example/ava.png",
			Valid:  true,
		},
		Tags:          "birds,nature",
		LikesCount:    4,
		CommentsCount: 2,
		UserLike:      true,
	}

	post := renderPost(row)

	if post.ID != 7 || post.UserID != 3 || post.UserNickname != "peregrine" {
		t.Errorf("identity fields wrong: %+v", post)
	}
	if post.UserAvatarURL != "https://img.example/ava.png" {
		t.Errorf("avatar = %q", post.UserAvatarURL)
	}
	if !reflect.DeepEqual(post.Tags, []string{"birds", "nature"}) {
		t.Errorf("tags = %v", post.Tags)
	}
	if len(post.Content) != 1 || post.Content[0].Type != "text" {
		t.Errorf("content = %+v", post.Content)
	}
	if !post.UserLike || post.UserSaved {
		t.Errorf("annotations = like %v, saved %v", post.UserLike, post.UserSaved)
	}
}

func TestRenderPostEmptyAggregates(t *testing.T) {
	post := renderPost(&db.PostRow{ID: 1, Title: "bare"})

	// Empty slices, not nil, so listings marshal as [] instead of null
	if post.Tags == nil || len(post.Tags) != 0 {
		t.Errorf("tags = %#v, want empty slice", post.Tags)
	}
	if post.Content == nil || len(post.Content) != 0 {
		t.Errorf("content = %#v, want empty slice", post.Content)
	}
	if post.UserAvatarURL != "" {
		t.Errorf("avatar = %q, want empty", post.UserAvatarURL)
	}
}

func TestRenderNotification(t *testing.T) {
	n := &models.Notification{
		ID:       11,
		Type:     models.NotifyTypePostLike,
		SenderID: 2,
		TargetID: 5,
		Payload:  sql.NullString{String: `{"post_id":7}`, Valid: true},
		Read:     false,
	}

	out := renderNotification(n)
	if out.Type != "post_like" || out.SenderID != 2 || out.TargetID != 5 {
		t.Errorf("rendered = %+v", out)
	}
	if string(out.Payload) != `{"post_id":7}` {
		t.Errorf("payload = %s", out.Payload)
	}

	out = renderNotification(&models.Notification{Type: models.NotifyTypeSubscription})
	if out.Payload != nil {
		t.Errorf("null payload should render nil, got %s", out.Payload)
	}
}

func TestBanMessage(t *testing.T) {
	expiry := time.Date(2025, 3, 4, 18, 45, 0, 0, time.UTC)

	msg := BanMessage(&models.Ban{ExpiresAt: expiry})
	if !strings.Contains(msg, "04.03.2025 18:45") {
		t.Errorf("message lacks formatted expiry: %q", msg)
	}
	if strings.Contains(msg, "Reason:") {
		t.Errorf("message without reason should omit the suffix: %q", msg)
	}

	msg = BanMessage(&models.Ban{
		ExpiresAt: expiry,
		Message:   sql.NullString{String: "spam", Valid: true},
	})
	if !strings.HasSuffix(msg, "Reason: spam") {
		t.Errorf("message = %q", msg)
	}
}
