package bill

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FormatDate", func() {
	DescribeTable("well-formed dates",
		func(raw, want string) {
			got := FormatDate(raw)
			Expect(got).To(Equal(want))
			Expect(got).NotTo(BeEmpty())
			Expect(got).NotTo(Equal(raw))
		},
		Entry("january", "2024-01-01", "1 Jan. 24"),
		Entry("february keeps the accent", "2004-02-14", "14 Fév. 04"),
		Entry("may has no dot of its own", "2021-05-03", "3 Mai. 21"),
		Entry("august", "2023-08-31", "31 Aoû. 23"),
		Entry("december", "2002-12-25", "25 Déc. 02"),
		Entry("timestamp", "2023-01-15T10:00:00Z", "15 Jan. 23"),
	)

	DescribeTable("malformed dates pass through",
		func(raw string) {
			Expect(FormatDate(raw)).To(Equal(raw))
		},
		Entry("garbage", "invalid-date"),
		Entry("empty", ""),
		Entry("impossible day", "2024-02-30"),
		Entry("slashes", "2024/01/01"),
	)
})

var _ = Describe("StatusLabel", func() {
	DescribeTable("labels",
		func(s Status, want string) {
			Expect(StatusLabel(s)).To(Equal(want))
		},
		Entry("pending", StatusPending, "En attente"),
		Entry("accepted", StatusAccepted, "Accepté"),
		Entry("refused", StatusRefused, "Refusé"),
		Entry("unknown", Status("unknown"), "Refusé"),
		Entry("empty", Status(""), "Refusé"),
	)
})

var _ = Describe("FormatAmount", func() {
	It("should suffix the euro sign", func() {
		Expect(FormatAmount(NewAmount(100))).To(Equal("100 €"))
	})
})

var _ = Describe("ToDisplay", func() {
	var (
		raw     Bill
		display Display
	)

	JustBeforeEach(func() {
		display = ToDisplay(raw)
	})

	When("the bill is well formed", func() {
		BeforeEach(func() {
			raw = Bill{ID: "1", Date: "2023-01-15", Status: StatusPending, Amount: NewAmount(100), Pct: 20}
		})

		It("should format the date", func() {
			Expect(display.FormattedDate).To(Equal("15 Jan. 23"))
		})

		It("should keep the raw date", func() {
			Expect(display.Date).To(Equal("2023-01-15"))
			Expect(display.RawDate()).To(Equal("2023-01-15"))
		})

		It("should label the status", func() {
			Expect(display.StatusLabel).To(Equal("En attente"))
		})

		It("should format the amount", func() {
			Expect(display.FormattedAmount).To(Equal("100 €"))
		})

		It("should keep the stored values", func() {
			Expect(display.Bill).To(Equal(raw))
		})
	})

	When("the bill is corrupted", func() {
		BeforeEach(func() {
			raw = Bill{ID: "1", Date: "invalid-date", Status: "unknown"}
		})

		It("should pass the date through", func() {
			Expect(display.FormattedDate).To(Equal("invalid-date"))
		})

		It("should still label the status", func() {
			Expect(display.StatusLabel).To(Equal("Refusé"))
		})

		It("should fall back to the default VAT rate", func() {
			Expect(display.Pct).To(Equal(DefaultPct))
		})
	})
})
