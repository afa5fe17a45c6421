package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"tradeinvoice/internal/invoice/handler/mocks"
	"tradeinvoice/internal/invoice/models"
	"tradeinvoice/pkg/contenthash"
	id "tradeinvoice/pkg/domain"
	dErrors "tradeinvoice/pkg/domain-errors"
	"tradeinvoice/pkg/platform/httputil"
	"tradeinvoice/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/invoice-mocks.go -package=mocks Service

const testHash = "0x8f434346648f6b96df89dda901c5176b10a6d83961dd3c1ac88b59b2dc327aa4"

type InvoiceHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  http.Handler
}

func TestInvoiceHandlerSuite(t *testing.T) {
	suite.Run(t, new(InvoiceHandlerSuite))
}

func (s *InvoiceHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(s.service, logger).Register(r, bearerIsCaller)
	s.router = r
}

// bearerIsCaller treats the bearer token itself as the caller identity.
func bearerIsCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing token"))
			return
		}
		next.ServeHTTP(w, testutil.WithCaller(r, token))
	})
}

func (s *InvoiceHandlerSuite) do(method, path, caller string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = testutil.NewJSONRequest(s.T(), method, path, nil)
	case string:
		req = testutil.NewRequestWithBody(s.T(), method, path, b)
	default:
		req = testutil.NewJSONRequest(s.T(), method, path, b)
	}
	if caller != "" {
		req = testutil.WithBearer(req, caller)
	}
	return testutil.DoRequest(s.router, req)
}

func (s *InvoiceHandlerSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	return *testutil.UnmarshalResponse[map[string]any](s.T(), rec)
}

func sampleInvoice() *models.Invoice {
	h, _ := models.ParseContentHash(testHash)
	return &models.Invoice{
		ID:          1,
		Issuer:      "issuer-I",
		Recipient:   "recipient-R",
		Amount:      1000,
		Currency:    "USD",
		IssueDate:   500,
		DueDate:     600,
		Status:      models.StatusPending,
		Description: "goods",
		Hash:        h,
	}
}

func (s *InvoiceHandlerSuite) TestGetRegistry() {
	s.service.EXPECT().GetState(gomock.Any()).Return(models.RegistryState{
		Admin: "admin-A", Oracle: "oracle-O", InvoiceCounter: 3,
	}, nil)

	rec := s.do(http.MethodGet, "/registry", "", nil)

	s.Equal(http.StatusOK, rec.Code)
	body := s.decode(rec)
	s.Equal("admin-A", body["admin"])
	s.Equal("oracle-O", body["oracle"])
	s.Equal(false, body["paused"])
	s.Equal(float64(3), body["invoice_count"])
}

func (s *InvoiceHandlerSuite) TestWritesRequireAuth() {
	rec := s.do(http.MethodPost, "/invoices/1/verify", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *InvoiceHandlerSuite) TestCreateInvoice() {
	s.Run("explicit hash", func() {
		want, _ := models.ParseContentHash(testHash)
		s.service.EXPECT().CreateInvoice(gomock.Any(), id.Identity("issuer-I"), models.CreateInvoiceRequest{
			Recipient:   "recipient-R",
			Amount:      1000,
			Currency:    "USD",
			DueDate:     600,
			Description: "goods",
			Hash:        want,
		}).Return(uint64(1), nil)

		rec := s.do(http.MethodPost, "/invoices", "issuer-I", map[string]any{
			"recipient":   "recipient-R",
			"amount":      1000,
			"currency":    "usd",
			"due_date":    600,
			"description": "goods",
			"hash":        testHash,
		})

		s.Equal(http.StatusCreated, rec.Code)
		body := s.decode(rec)
		s.Equal(float64(1), body["invoice_id"])
		s.Equal(testHash, body["hash"])
	})

	s.Run("derived hash", func() {
		doc := contenthash.Document{
			Issuer: "issuer-I", Recipient: "recipient-R", Amount: 5, Currency: "EUR", DueDate: 900,
		}
		derived := models.ContentHash(contenthash.Sum(doc))
		s.service.EXPECT().CreateInvoice(gomock.Any(), id.Identity("issuer-I"), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.Identity, req models.CreateInvoiceRequest) (uint64, error) {
				s.Equal(derived, req.Hash)
				return 2, nil
			})

		rec := s.do(http.MethodPost, "/invoices", "issuer-I", map[string]any{
			"recipient": "recipient-R", "amount": 5, "currency": "EUR", "due_date": 900,
		})
		s.Equal(http.StatusCreated, rec.Code)
		s.Equal(derived.String(), s.decode(rec)["hash"])
	})

	s.Run("malformed hash is a bad request", func() {
		rec := s.do(http.MethodPost, "/invoices", "issuer-I", map[string]any{
			"recipient": "recipient-R", "amount": 5, "currency": "EUR", "due_date": 900, "hash": "0x1234",
		})
		testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, "bad_request")
	})

	s.Run("registry rejection is mapped", func() {
		s.service.EXPECT().CreateInvoice(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(uint64(0), dErrors.New(dErrors.CodeInvoiceExists, "an invoice with this content hash already exists"))

		rec := s.do(http.MethodPost, "/invoices", "issuer-I", map[string]any{
			"recipient": "recipient-R", "amount": 5, "currency": "EUR", "due_date": 900, "hash": testHash,
		})
		testutil.AssertStatusAndError(s.T(), rec, http.StatusConflict, "invoice_exists")
	})

	s.Run("paused registry is unavailable", func() {
		s.service.EXPECT().CreateInvoice(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(uint64(0), dErrors.New(dErrors.CodePaused, "registry is paused"))

		rec := s.do(http.MethodPost, "/invoices", "issuer-I", map[string]any{"hash": testHash})
		s.Equal(http.StatusServiceUnavailable, rec.Code)
	})
}

func (s *InvoiceHandlerSuite) TestGetInvoice() {
	s.Run("found", func() {
		s.service.EXPECT().GetInvoice(gomock.Any(), uint64(1)).Return(sampleInvoice(), nil)

		rec := s.do(http.MethodGet, "/invoices/1", "", nil)
		s.Equal(http.StatusOK, rec.Code)
		body := s.decode(rec)
		s.Equal("issuer-I", body["issuer"])
		s.Equal("Pending", body["status"])
		s.Equal(false, body["verified"])
	})

	s.Run("not found", func() {
		s.service.EXPECT().GetInvoice(gomock.Any(), uint64(0)).
			Return(nil, dErrors.New(dErrors.CodeInvoiceNotFound, "invoice not found"))

		rec := s.do(http.MethodGet, "/invoices/0", "", nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("non-numeric id", func() {
		rec := s.do(http.MethodGet, "/invoices/abc", "", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *InvoiceHandlerSuite) TestCountAndHashLookup() {
	s.service.EXPECT().GetInvoiceCount(gomock.Any()).Return(uint64(4), nil)
	rec := s.do(http.MethodGet, "/invoices/count", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(float64(4), s.decode(rec)["invoice_count"])

	h, _ := models.ParseContentHash(testHash)
	s.service.EXPECT().GetInvoiceByHash(gomock.Any(), h).Return(uint64(4), nil)
	rec = s.do(http.MethodGet, "/invoices/by-hash/"+testHash, "", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(float64(4), s.decode(rec)["invoice_id"])

	rec = s.do(http.MethodGet, "/invoices/by-hash/not-hex", "", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *InvoiceHandlerSuite) TestUpdateStatus() {
	s.Run("by name", func() {
		updated := sampleInvoice()
		updated.Status = models.StatusPaid
		s.service.EXPECT().UpdateStatus(gomock.Any(), id.Identity("issuer-I"), uint64(1), models.StatusPaid).Return(updated, nil)

		rec := s.do(http.MethodPut, "/invoices/1/status", "issuer-I", `{"status":"Paid"}`)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("Paid", s.decode(rec)["status"])
	})

	s.Run("unknown status reaches the registry", func() {
		s.service.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), uint64(1), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.Identity, _ uint64, st models.Status) (*models.Invoice, error) {
				s.False(st.IsValid())
				return nil, dErrors.New(dErrors.CodeInvalidStatus, "unknown invoice status")
			})

		rec := s.do(http.MethodPut, "/invoices/1/status", "issuer-I", `{"status":"Refunded"}`)
		testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, "invalid_status")
	})

	s.Run("missing status", func() {
		rec := s.do(http.MethodPut, "/invoices/1/status", "issuer-I", `{}`)
		testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, "bad_request")
	})
}

func (s *InvoiceHandlerSuite) TestVerifyAndCancel() {
	verified := sampleInvoice()
	verified.Verified = true
	s.service.EXPECT().VerifyInvoice(gomock.Any(), id.Identity("oracle-O"), uint64(1)).Return(verified, nil)
	rec := s.do(http.MethodPost, "/invoices/1/verify", "oracle-O", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(true, s.decode(rec)["verified"])

	s.service.EXPECT().VerifyInvoice(gomock.Any(), id.Identity("issuer-I"), uint64(1)).
		Return(nil, dErrors.New(dErrors.CodeNotAuthorized, "caller is not the oracle"))
	rec = s.do(http.MethodPost, "/invoices/1/verify", "issuer-I", nil)
	s.Equal(http.StatusForbidden, rec.Code)

	s.service.EXPECT().CancelInvoice(gomock.Any(), id.Identity("issuer-I"), uint64(1)).
		Return(nil, dErrors.New(dErrors.CodeInvalidStatus, "only pending invoices can be cancelled"))
	rec = s.do(http.MethodPost, "/invoices/1/cancel", "issuer-I", nil)
	testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, "invalid_status")
}

func (s *InvoiceHandlerSuite) TestGovernance() {
	s.service.EXPECT().TransferAdmin(gomock.Any(), id.Identity("admin-A"), id.Identity("admin-B")).Return(nil)
	rec := s.do(http.MethodPut, "/registry/admin", "admin-A", `{"new_admin":"admin-B"}`)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("admin-B", s.decode(rec)["admin"])

	s.service.EXPECT().TransferAdmin(gomock.Any(), id.Identity("admin-B"), id.Identity("")).
		Return(dErrors.New(dErrors.CodeZeroAddress, "new admin is required"))
	rec = s.do(http.MethodPut, "/registry/admin", "admin-B", `{"new_admin":"0x0000000000000000000000000000000000000000"}`)
	testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, "zero_address")

	s.service.EXPECT().SetOracle(gomock.Any(), id.Identity("admin-B"), id.Identity("oracle-P")).Return(nil)
	rec = s.do(http.MethodPut, "/registry/oracle", "admin-B", `{"new_oracle":"oracle-P"}`)
	s.Equal(http.StatusOK, rec.Code)

	s.service.EXPECT().SetPaused(gomock.Any(), id.Identity("admin-B"), true).Return(true, nil)
	rec = s.do(http.MethodPut, "/registry/paused", "admin-B", `{"paused":true}`)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(true, s.decode(rec)["paused"])

	rec = s.do(http.MethodPut, "/registry/paused", "admin-B", `{}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *InvoiceHandlerSuite) TestInternalErrorsHideDetails() {
	s.service.EXPECT().GetInvoiceCount(gomock.Any()).
		Return(uint64(0), dErrors.Wrap(io.ErrUnexpectedEOF, dErrors.CodeInternal, "failed to load registry state"))

	rec := s.do(http.MethodGet, "/invoices/count", "", nil)
	s.Equal(http.StatusInternalServerError, rec.Code)
	body := s.decode(rec)
	s.Equal("internal_error", body["error"])
	s.NotContains(rec.Body.String(), "EOF")
}
