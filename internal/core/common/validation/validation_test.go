package validation_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/core/common/validation"
)

var _ = Describe("ValidationBuilder", func() {
	It("collects one error per failing field", func() {
		v := validation.NewValidator()
		v.Field("name", "").Required()
		v.Field("email", "not-an-email").Required().Email()
		v.Field("password", "abc").Required().MinLength(validation.MinPasswordLength, internal.ErrCodePasswordTooShort)
		v.Field("startDate", "2024-13-40").Required().Date()

		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.Type).To(Equal(internal.ErrorTypeValidation))

		details, ok := err.Details.(internal.ValidationErrors)
		Expect(ok).To(BeTrue())
		Expect(details.Errors).To(HaveLen(4))
		Expect(details.Errors[0].Field).To(Equal("name"))
		Expect(details.Errors[1].Code).To(Equal(string(internal.ErrCodeInvalidEmail)))
		Expect(details.Errors[2].Code).To(Equal(string(internal.ErrCodePasswordTooShort)))
		Expect(details.Errors[3].Code).To(Equal(string(internal.ErrCodeInvalidDate)))
	})

	It("passes valid input", func() {
		v := validation.NewValidator()
		v.Field("email", "jane@example.com").Required().Email()
		v.Field("startDate", "2024-03-01").Required().Date()
		Expect(v.Validate()).To(BeNil())
	})

	It("treats whitespace-only strings as missing", func() {
		v := validation.NewValidator()
		v.Field("reason", "   ").Required()
		Expect(v.Validate()).NotTo(BeNil())
	})
})

var _ = Describe("date and email helpers", func() {
	It("parses dates to midnight UTC", func() {
		d, err := validation.ParseDate("2024-03-05")
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	})

	It("truncates timestamps to their calendar date", func() {
		ts := time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC)
		Expect(validation.TruncateDate(ts)).To(Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	})

	It("normalises emails", func() {
		Expect(validation.NormalizeEmail("  Jane.Doe@Example.COM ")).To(Equal("jane.doe@example.com"))
	})
})
