package session

import (
	"path/filepath"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/billed/internal/bill"
)

var _ = Describe("BoltStore", func() {
	var store *BoltStore

	BeforeEach(func() {
		var err error
		store, err = NewBoltStore(filepath.Join(GinkgoT().TempDir(), "session.db"))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	Describe("Identity", func() {
		When("nothing is stored", func() {
			It("should report no session", func() {
				_, err := store.Identity()
				Expect(err).To(MatchError(ErrNoSession))
			})
		})

		When("a user is stored", func() {
			BeforeEach(func() {
				Expect(store.SetUser(Identity{Type: RoleEmployee, Email: "employee@test.com"})).To(Succeed())
			})

			It("should return it", func() {
				identity, err := store.Identity()
				Expect(err).NotTo(HaveOccurred())
				Expect(identity).To(Equal(Identity{Type: RoleEmployee, Email: "employee@test.com"}))
			})
		})

		When("only a token is stored", func() {
			BeforeEach(func() {
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "a@a", "type": "Admin"}).SignedString([]byte("k"))
				Expect(err).NotTo(HaveOccurred())
				Expect(store.SetToken(token)).To(Succeed())
			})

			It("should read the identity from the token", func() {
				identity, err := store.Identity()
				Expect(err).NotTo(HaveOccurred())
				Expect(identity).To(Equal(Identity{Type: RoleAdmin, Email: "a@a"}))
			})
		})
	})

	Describe("Token", func() {
		It("should be empty by default", func() {
			token, err := store.Token()
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(BeEmpty())
		})

		It("should round-trip", func() {
			Expect(store.SetToken("abc")).To(Succeed())
			Expect(store.Token()).To(Equal("abc"))
		})
	})

	Describe("Drafts", func() {
		var draft bill.Draft

		BeforeEach(func() {
			draft = bill.Draft{
				FileURL:    "https://cdn/test.jpg",
				FileName:   "test.jpg",
				Key:        "k1",
				Suggestion: &bill.Suggestion{Name: "SNCF", Date: "2024-04-04", Amount: bill.NewAmount(150)},
			}
		})

		It("should report a missing draft", func() {
			_, ok, err := store.Draft("employee@test.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("should round-trip a draft", func() {
			Expect(store.SaveDraft("employee@test.com", draft)).To(Succeed())
			got, ok, err := store.Draft("employee@test.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(draft))
		})

		It("should keep drafts per employee", func() {
			Expect(store.SaveDraft("employee@test.com", draft)).To(Succeed())
			_, ok, err := store.Draft("other@test.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("should clear a draft", func() {
			Expect(store.SaveDraft("employee@test.com", draft)).To(Succeed())
			Expect(store.ClearDraft("employee@test.com")).To(Succeed())
			_, ok, err := store.Draft("employee@test.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("should refuse an empty key", func() {
			Expect(store.SaveDraft("", draft)).NotTo(Succeed())
		})
	})

	When("the database file is already open", func() {
		It("should time out", func() {
			path := filepath.Join(GinkgoT().TempDir(), "locked.db")
			first, err := NewBoltStore(path)
			Expect(err).NotTo(HaveOccurred())
			defer first.Close()

			_, err = NewBoltStore(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
