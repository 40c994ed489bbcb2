package prescription

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ComposeOrder", func() {
	var (
		unavailable []LineItem
		now         time.Time
		order       *Order
	)

	BeforeEach(func() {
		now = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	})

	JustBeforeEach(func() {
		order = ComposeOrder(unavailable, now)
	})

	When("there are no unavailable items", func() {
		BeforeEach(func() {
			unavailable = nil
		})

		It("should not compose an order", func() {
			Expect(order).To(BeNil())
		})
	})

	When("one item is unavailable", func() {
		BeforeEach(func() {
			unavailable = []LineItem{{Name: "Ibuprofen"}}
		})

		It("should compose an order with exactly one entry", func() {
			Expect(order.Items).To(HaveLen(1))
		})

		It("should default the quantity to one", func() {
			Expect(order.Items[0].Quantity).To(Equal(1))
		})

		It("should default the reason", func() {
			Expect(order.Items[0].Reason).To(Equal(DefaultOrderReason))
		})

		It("should start in the pending status", func() {
			Expect(order.Status).To(Equal(OrderStatusPending))
		})

		It("should stamp the creation time", func() {
			Expect(order.CreatedAt).To(Equal(now))
			Expect(order.UpdatedAt).To(Equal(now))
		})
	})

	When("several items are unavailable", func() {
		BeforeEach(func() {
			unavailable = []LineItem{
				{Name: "Ibuprofen", Quantity: 3},
				{Name: "Paracetamol"},
			}
		})

		It("should batch them into a single order", func() {
			Expect(order.Items).To(HaveLen(2))
		})

		It("should keep specified quantities", func() {
			Expect(order.Items[0].Quantity).To(Equal(3))
		})

		It("should preserve the item order", func() {
			Expect(order.Items[0].Name).To(Equal("Ibuprofen"))
			Expect(order.Items[1].Name).To(Equal("Paracetamol"))
		})
	})
})
