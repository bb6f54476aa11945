package dto

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestReparentSkillRequest_Parent(t *testing.T) {
	id := uuid.New()

	cases := []struct {
		name    string
		body    string
		want    *uuid.UUID
		wantErr error
	}{
		{name: "missing key", body: `{}`, wantErr: ErrParentIDRequired},
		{name: "explicit null", body: `{"parent_id": null}`},
		{name: "uuid", body: `{"parent_id": "` + id.String() + `"}`, want: &id},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req ReparentSkillRequest
			if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
				t.Fatalf("decode: %v", err)
			}
			got, err := req.Parent()
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parent: %v", err)
			}
			if (got == nil) != (tc.want == nil) || (got != nil && *got != *tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}

	var bad ReparentSkillRequest
	if err := json.Unmarshal([]byte(`{"parent_id": "not-a-uuid"}`), &bad); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := bad.Parent(); err == nil {
		t.Fatal("expected an error for a malformed parent_id")
	}
}
