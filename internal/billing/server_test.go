package billing

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/session"
	"github.com/zombor/billed/internal/store"
)

func multipartBody(fileName string, data []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", fileName)
	Expect(err).NotTo(HaveOccurred())
	_, err = part.Write(data)
	Expect(err).NotTo(HaveOccurred())
	Expect(mw.Close()).To(Succeed())
	return body, mw.FormDataContentType()
}

var _ = Describe("Server", func() {
	var (
		remote   *mockStore
		drafts   *mockDrafts
		identity session.Static
		auth     BasicAuth
		registry *prometheus.Registry
		server   *Server
	)

	BeforeEach(func() {
		accepted := pendingBill("2")
		accepted.Status = bill.StatusAccepted
		remote = &mockStore{
			bills:      []bill.Bill{pendingBill("1"), accepted},
			attachment: store.Attachment{FileURL: "https://files.test/r.png", FileName: "r.png", Key: "k"},
		}
		drafts = newMockDrafts()
		identity = session.Static{Type: session.RoleAdmin, Email: "admin@billed.test"}
		auth = BasicAuth{}
		registry = prometheus.NewRegistry()
	})

	JustBeforeEach(func() {
		server = NewServer(Deps{Store: remote, Identity: identity, Drafts: drafts}, auth, registry)
	})

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder, v any) {
		Expect(json.NewDecoder(rec.Body).Decode(v)).To(Succeed())
	}

	Describe("authentication", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "user", Password: "pass"}
		})

		It("rejects requests without credentials", func() {
			rec := serve(httptest.NewRequest(http.MethodGet, "/api/bills", nil))
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Header().Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
		})

		It("accepts valid credentials", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/bills", nil)
			req.SetBasicAuth("user", "pass")
			Expect(serve(req).Code).To(Equal(http.StatusOK))
		})

		It("answers preflight requests with CORS headers", func() {
			rec := serve(httptest.NewRequest(http.MethodOptions, "/api/bills", nil))
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})
	})

	Describe("GET /api/bills", func() {
		It("returns the formatted bills", func() {
			rec := serve(httptest.NewRequest(http.MethodGet, "/api/bills", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var bills []map[string]any
			decode(rec, &bills)
			Expect(bills).To(HaveLen(2))
			Expect(bills[0]).To(HaveKeyWithValue("formattedAmount", "100 €"))
		})

		It("answers 503 without a store", func() {
			server = NewServer(Deps{Identity: identity, Drafts: drafts}, auth, registry)
			rec := serve(httptest.NewRequest(http.MethodGet, "/api/bills", nil))
			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(rec.Body.String()).To(ContainSubstring("no repository configured"))
		})

		It("answers 502 with the persistence API message", func() {
			remote.listErr = &store.APIError{StatusCode: 404}
			rec := serve(httptest.NewRequest(http.MethodGet, "/api/bills", nil))
			Expect(rec.Code).To(Equal(http.StatusBadGateway))
			Expect(rec.Body.String()).To(ContainSubstring("Error 404"))
		})
	})

	Describe("GET /api/dashboard", func() {
		It("returns the buckets", func() {
			rec := serve(httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var dashboard Dashboard
			decode(rec, &dashboard)
			pending, ok := dashboard.Section(bill.StatusPending)
			Expect(ok).To(BeTrue())
			Expect(pending.Count).To(Equal(1))
		})

		It("is forbidden to employees", func() {
			identity = session.Static{Type: session.RoleEmployee, Email: "john.doe@billed.test"}
			server = NewServer(Deps{Store: remote, Identity: identity, Drafts: drafts}, auth, registry)
			rec := serve(httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("POST /api/bills/{id}/accept", func() {
		It("accepts and reports the next route", func() {
			rec := serve(httptest.NewRequest(http.MethodPost, "/api/bills/1/accept", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp decision
			decode(rec, &resp)
			Expect(resp.Bill.Status).To(Equal(bill.StatusAccepted))
			Expect(resp.Next).To(Equal(RouteDashboard))
		})

		It("answers 409 for a decided bill", func() {
			rec := serve(httptest.NewRequest(http.MethodPost, "/api/bills/2/refuse", nil))
			Expect(rec.Code).To(Equal(http.StatusConflict))
		})

		It("answers 404 for an unknown bill", func() {
			rec := serve(httptest.NewRequest(http.MethodPost, "/api/bills/9/accept", nil))
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("attachments and submission", func() {
		BeforeEach(func() {
			identity = session.Static{Type: session.RoleEmployee, Email: "john.doe@billed.test"}
		})

		It("rejects a refused extension with the message", func() {
			body, contentType := multipartBody("receipt.gif", []byte("gif"))
			req := httptest.NewRequest(http.MethodPost, "/api/attachments", body)
			req.Header.Set("Content-Type", contentType)

			rec := serve(req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("jpg, jpeg, png ou webp"))
			Expect(remote.uploads).To(BeEmpty())
		})

		It("uploads then creates the bill", func() {
			body, contentType := multipartBody("receipt.png", []byte("png"))
			req := httptest.NewRequest(http.MethodPost, "/api/attachments", body)
			req.Header.Set("Content-Type", contentType)
			Expect(serve(req).Code).To(Equal(http.StatusCreated))

			form := `{"type":"Transports","name":"Train","date":"2024-01-01","amount":"100","vat":"20","pct":"20"}`
			rec := serve(httptest.NewRequest(http.MethodPost, "/api/bills", strings.NewReader(form)))
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var resp decision
			decode(rec, &resp)
			Expect(resp.Next).To(Equal(RouteBills))
			Expect(resp.Bill.FileURL).To(Equal("https://files.test/r.png"))
			Expect(remote.created).To(HaveLen(1))
		})

		It("answers 400 when no receipt was uploaded", func() {
			rec := serve(httptest.NewRequest(http.MethodPost, "/api/bills", strings.NewReader(`{"name":"x"}`)))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(remote.created).To(BeEmpty())
		})
	})

	Describe("GET /metrics", func() {
		It("serves the registry", func() {
			metrics := store.NewMetrics(registry)
			server = NewServer(Deps{Store: store.Instrument(remote, metrics), Identity: identity, Drafts: drafts}, auth, registry)
			serve(httptest.NewRequest(http.MethodGet, "/api/bills", nil))

			rec := serve(httptest.NewRequest(http.MethodGet, "/metrics", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`billed_store_requests_total{op="list",outcome="ok"} 1`))
		})
	})
})
