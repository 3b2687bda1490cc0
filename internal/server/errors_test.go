package server

import (
	"errors"
	"net/http"
	"testing"

	historydomain "github.com/mabdulrehman08/propmanager/internal/history/domain"
	invoicedomain "github.com/mabdulrehman08/propmanager/internal/invoice/domain"
	settlementdomain "github.com/mabdulrehman08/propmanager/internal/settlement/domain"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{invoicedomain.ErrInvoiceNotFound, http.StatusNotFound, "invoice_not_found"},
		{historydomain.ErrUnitNotFound, http.StatusNotFound, "unit_not_found"},
		{settlementdomain.ErrPropertyNotFound, http.StatusNotFound, "property_not_found"},
		{invoicedomain.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
		{historydomain.ErrInvalidStart, http.StatusBadRequest, "invalid_start_period"},
		{errors.New("unexpected"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		status, code := statusForError(tc.err)
		if status != tc.wantStatus || code != tc.wantCode {
			t.Fatalf("statusForError(%v) = (%d, %s), want (%d, %s)", tc.err, status, code, tc.wantStatus, tc.wantCode)
		}
	}
}
