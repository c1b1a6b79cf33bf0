package validator

import (
	"strings"
	"testing"

	"github.com/BenZehavi423/smart-dashboard/pkg/model"
)

func TestValidateEditRequest(t *testing.T) {
	v := NewEventValidator()

	tests := []struct {
		name    string
		req     model.EditRequest
		wantErr bool
	}{
		{name: "valid", req: model.EditRequest{ResourceID: "biz1"}, wantErr: false},
		{name: "missing resource id", req: model.EditRequest{}, wantErr: true},
		{name: "resource id too long", req: model.EditRequest{ResourceID: strings.Repeat("x", 300)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateEditRequest(&tt.req)
			if tt.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateEditRequest_ErrorNamesField(t *testing.T) {
	v := NewEventValidator()

	err := v.ValidateEditRequest(&model.EditRequest{})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	vErr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if vErr.Field != "ResourceID" {
		t.Errorf("expected the error to name ResourceID, got %q", vErr.Field)
	}
}
