package scanning

import (
	"context"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Ollama", func() {
	var (
		server  *ghttp.Server
		scanner *Ollama
		data    *ReceiptData
		err     error
		sent    ollamaChatRequest
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		scanner, err = NewOllama(server.URL(), "llava")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		data, err = scanner.ScanReceipt(context.Background(), []byte("image"), "image/png")
	})

	When("the model answers with JSON", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					defer GinkgoRecover()
					Expect(decodeJSON(r, &sent)).To(Succeed())
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: `{"name": "Ibis", "date": "2024-01-15", "amount": 89}`},
					Done:    true,
				}),
			))
		})

		It("should return the receipt data", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal(&ReceiptData{Name: "Ibis", Date: "2024-01-15", Amount: 89}))
		})

		It("should send the image with the user message", func() {
			Expect(sent.Model).To(Equal("llava"))
			Expect(sent.Messages).To(HaveLen(2))
			Expect(sent.Messages[1].Images).To(ConsistOf("aW1hZ2U="))
		})
	})

	When("the server fails", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("should return the error", func() {
			Expect(err).To(MatchError(ContainSubstring("model not loaded")))
			Expect(data).To(BeNil())
		})
	})
})
