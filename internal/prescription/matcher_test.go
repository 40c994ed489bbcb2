package prescription

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MatchInventory", func() {
	var (
		items     []LineItem
		inventory []Medicine
		outcome   MatchOutcome
	)

	BeforeEach(func() {
		inventory = []Medicine{
			{Name: "Amoxicillin", Dosage: "500mg", Quantity: 100, Price: 12.99},
			{Name: "Lisinopril", Dosage: "10mg", Quantity: 50, Price: 15.50},
			{Name: "Metformin", Dosage: "850mg", Quantity: 1, Price: 8.75},
		}
	})

	JustBeforeEach(func() {
		outcome = MatchInventory(items, inventory)
	})

	When("every item is stocked", func() {
		BeforeEach(func() {
			items = []LineItem{
				{Name: "Amoxicillin", Quantity: 2},
				{Name: "Lisinopril"},
			}
		})

		It("should mark all items available", func() {
			Expect(outcome.Available).To(HaveLen(2))
			Expect(outcome.Unavailable).To(BeEmpty())
		})

		It("should pair each item with its inventory entry", func() {
			Expect(outcome.Available[0].Medicine.Name).To(Equal("Amoxicillin"))
			Expect(outcome.Available[0].Medicine.Price).To(Equal(12.99))
			Expect(outcome.Available[1].Medicine.Name).To(Equal("Lisinopril"))
		})
	})

	When("names differ in case and spacing", func() {
		BeforeEach(func() {
			items = []LineItem{{Name: "  aMOXicillin  "}}
		})

		It("should still match", func() {
			Expect(outcome.Available).To(HaveLen(1))
			Expect(outcome.Unavailable).To(BeEmpty())
		})
	})

	When("a medicine is not in the inventory", func() {
		BeforeEach(func() {
			items = []LineItem{{Name: "Ibuprofen"}}
		})

		It("should mark it unavailable", func() {
			Expect(outcome.Available).To(BeEmpty())
			Expect(outcome.Unavailable).To(HaveLen(1))
			Expect(outcome.Unavailable[0].Name).To(Equal("Ibuprofen"))
		})
	})

	When("stock is insufficient for the requested quantity", func() {
		BeforeEach(func() {
			items = []LineItem{{Name: "Metformin", Quantity: 5}}
		})

		It("should treat depletion the same as absence", func() {
			Expect(outcome.Available).To(BeEmpty())
			Expect(outcome.Unavailable).To(HaveLen(1))
		})
	})

	When("the quantity is unspecified", func() {
		BeforeEach(func() {
			// Metformin has exactly one unit on hand
			items = []LineItem{{Name: "Metformin"}}
		})

		It("should default the request to one unit", func() {
			Expect(outcome.Available).To(HaveLen(1))
		})
	})

	When("items mix available and unavailable medicines", func() {
		BeforeEach(func() {
			items = []LineItem{
				{Name: "Ibuprofen"},
				{Name: "Amoxicillin"},
				{Name: "Paracetamol"},
				{Name: "Lisinopril"},
				{Name: "Aspirin"},
			}
		})

		It("should preserve input order within each partition", func() {
			Expect(outcome.Available[0].Item.Name).To(Equal("Amoxicillin"))
			Expect(outcome.Available[1].Item.Name).To(Equal("Lisinopril"))
			Expect(outcome.Unavailable[0].Name).To(Equal("Ibuprofen"))
			Expect(outcome.Unavailable[1].Name).To(Equal("Paracetamol"))
			Expect(outcome.Unavailable[2].Name).To(Equal("Aspirin"))
		})
	})

	When("duplicate items are prescribed", func() {
		BeforeEach(func() {
			items = []LineItem{
				{Name: "Amoxicillin"},
				{Name: "Amoxicillin"},
			}
		})

		It("should evaluate each occurrence independently", func() {
			Expect(outcome.Available).To(HaveLen(2))
		})
	})

	When("there are no items", func() {
		BeforeEach(func() {
			items = nil
		})

		It("should return empty partitions", func() {
			Expect(outcome.Available).To(BeEmpty())
			Expect(outcome.Unavailable).To(BeEmpty())
		})
	})

	When("the inventory is empty", func() {
		BeforeEach(func() {
			inventory = nil
			items = []LineItem{{Name: "Amoxicillin"}}
		})

		It("should mark everything unavailable", func() {
			Expect(outcome.Unavailable).To(HaveLen(1))
		})
	})
})

var _ = Describe("NormalizeName", func() {
	It("trims, lowercases and collapses whitespace", func() {
		Expect(NormalizeName("  Co   Amoxiclav ")).To(Equal("co amoxiclav"))
	})

	It("leaves already-normalized names alone", func() {
		Expect(NormalizeName("metformin")).To(Equal("metformin"))
	})
})
