package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/kindergarten-backend/internal/audit"
)

func TestReportVerify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		res     audit.VerifyOutcome
		wantErr error
		wantOut string
	}{
		{name: "verified", res: audit.VerifyOK, wantOut: "✓ record 7 verified\n"},
		{name: "mismatch", res: audit.VerifyMismatch, wantErr: errMismatch, wantOut: "✗ record 7: checksum mismatch\n"},
		{name: "missing", res: audit.VerifyNotFound, wantErr: errFailed, wantOut: "✗ record 7: not found\n"},
		{name: "not committed", res: audit.VerifyNotCommitted, wantErr: errFailed, wantOut: "✗ record 7: not committed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			err := reportVerify(&buf, 7, tt.res)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.wantOut, buf.String())
		})
	}
}
