package transport_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leaveflow/internal/transport"
	"github.com/frahmantamala/leaveflow/internal/transport/middleware"
	"github.com/frahmantamala/leaveflow/pkg/logger"
)

var _ = Describe("BaseHandler", func() {
	var (
		buf bytes.Buffer
		h   *transport.BaseHandler
	)

	BeforeEach(func() {
		buf.Reset()
		h = transport.NewBaseHandler(logger.New(&buf, "debug", "json"))
	})

	serve := func(next http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		chain := middleware.ContextLogger(h.Logger)(middleware.RequestID(next))
		chain.ServeHTTP(rec, req)
		return rec
	}

	It("logs handler errors with the request trace id", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header.Set(middleware.TraceIDHeader, "trace-7")

		rec := serve(func(w http.ResponseWriter, r *http.Request) {
			h.WriteAppError(w, r, errors.New("connection reset"))
		}, req)

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(buf.String()).To(ContainSubstring(`"msg":"unhandled error"`))
		Expect(buf.String()).To(ContainSubstring(`"trace_id":"trace-7"`))
	})

	It("carries fields added further down the chain", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)

		serve(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(logger.With(r.Context(), "employee_id", int64(42)))
			h.RequestLogger(r).Info("decided")
		}, req)

		Expect(buf.String()).To(ContainSubstring(`"employee_id":42`))
		Expect(buf.String()).To(ContainSubstring(`"trace_id"`))
	})

	It("falls back to its own logger outside the middleware chain", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/leaves", strings.NewReader("{"))

		rec := httptest.NewRecorder()
		Expect(h.DecodeJSON(rec, req, &struct{}{})).To(BeFalse())

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(buf.String()).To(ContainSubstring("invalid request body"))
	})
})
