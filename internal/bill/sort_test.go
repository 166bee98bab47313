package bill

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SortLatestFirst", func() {
	var bills []Bill

	BeforeEach(func() {
		bills = []Bill{
			{ID: "a", Date: "2004-04-04"},
			{ID: "b", Date: "2003-03-03"},
			{ID: "c", Date: "2002-02-02"},
			{ID: "d", Date: "2001-01-01"},
			{ID: "e", Date: "2004-04-04"},
		}
	})

	dates := func(bs []Bill) []string {
		out := make([]string, len(bs))
		for i, b := range bs {
			out[i] = b.Date
		}
		return out
	}

	ids := func(bs []Bill) []string {
		out := make([]string, len(bs))
		for i, b := range bs {
			out[i] = b.ID
		}
		return out
	}

	It("should order from latest to earliest", func() {
		bills[0], bills[3] = bills[3], bills[0]
		SortLatestFirst(bills)
		Expect(dates(bills)).To(Equal([]string{"2004-04-04", "2004-04-04", "2003-03-03", "2002-02-02", "2001-01-01"}))
	})

	It("should be idempotent", func() {
		SortLatestFirst(bills)
		first := ids(bills)
		SortLatestFirst(bills)
		Expect(ids(bills)).To(Equal(first))
	})

	It("should keep source order for equal dates", func() {
		SortLatestFirst(bills)
		Expect(ids(bills)[:2]).To(Equal([]string{"a", "e"}))
	})

	It("should place malformed dates deterministically", func() {
		bills = append(bills, Bill{ID: "x", Date: "invalid-date"}, Bill{ID: "y", Date: ""})
		SortLatestFirst(bills)
		Expect(bills[0].ID).To(Equal("x"))
		Expect(bills[len(bills)-1].ID).To(Equal("y"))
	})

	It("should sort display records on the raw date", func() {
		displays := []Display{
			ToDisplay(Bill{ID: "old", Date: "2023-12-01"}),
			ToDisplay(Bill{ID: "new", Date: "2024-01-01"}),
		}
		SortLatestFirst(displays)
		Expect(displays[0].ID).To(Equal("new"))
	})
})
