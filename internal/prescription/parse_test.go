package prescription

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParsePrescription", func() {
	var (
		text   string
		record Record
	)

	JustBeforeEach(func() {
		record = ParsePrescription(text)
	})

	When("parsing empty input", func() {
		BeforeEach(func() {
			text = ""
		})

		It("should return no patient name", func() {
			Expect(record.PatientName).To(BeEmpty())
		})

		It("should return no doctor name", func() {
			Expect(record.DoctorName).To(BeEmpty())
		})

		It("should return no items", func() {
			Expect(record.Items).To(BeEmpty())
		})

		It("should retain the raw text", func() {
			Expect(record.RawText).To(Equal(""))
		})
	})

	When("parsing whitespace-only input", func() {
		BeforeEach(func() {
			text = "  \n\t \n"
		})

		It("should return no items", func() {
			Expect(record.Items).To(BeEmpty())
		})

		It("should retain the raw text", func() {
			Expect(record.RawText).To(Equal("  \n\t \n"))
		})
	})

	When("parsing free-form prescription text", func() {
		BeforeEach(func() {
			text = "Patient: Jane Doe\nDr. Smith\nAmoxicillin 500mg qty 2\nLisinopril"
		})

		It("should parse the patient name", func() {
			Expect(record.PatientName).To(Equal("Jane Doe"))
		})

		It("should parse the doctor name without the title", func() {
			Expect(record.DoctorName).To(Equal("Smith"))
		})

		It("should parse two line items", func() {
			Expect(record.Items).To(HaveLen(2))
		})

		It("should parse the full first line item", func() {
			Expect(record.Items[0]).To(Equal(LineItem{Name: "Amoxicillin", Dosage: "500mg", Quantity: 2}))
		})

		It("should keep the bare medicine name with no dosage or quantity", func() {
			Expect(record.Items[1]).To(Equal(LineItem{Name: "Lisinopril"}))
		})

		It("should retain the raw text", func() {
			Expect(record.RawText).To(Equal(text))
		})
	})

	When("parsing the labeled transcription format", func() {
		BeforeEach(func() {
			text = "Patient: John Roe\n" +
				"Doctor: Dr. Alice Wong\n" +
				"Medicine: Metformin\n" +
				"Dosage: 850mg\n" +
				"Quantity: 30\n" +
				"Instructions: Take with meals\n" +
				"Medicine: Sertraline\n" +
				"Dosage: Not found\n" +
				"Quantity: Not found"
		})

		It("should parse the patient name", func() {
			Expect(record.PatientName).To(Equal("John Roe"))
		})

		It("should strip the doctor title", func() {
			Expect(record.DoctorName).To(Equal("Alice Wong"))
		})

		It("should build one item per Medicine label", func() {
			Expect(record.Items).To(HaveLen(2))
		})

		It("should attach dosage and quantity to the preceding item", func() {
			Expect(record.Items[0]).To(Equal(LineItem{Name: "Metformin", Dosage: "850mg", Quantity: 30}))
		})

		It("should leave placeholder fields unset", func() {
			Expect(record.Items[1]).To(Equal(LineItem{Name: "Sertraline"}))
		})

		It("should not turn the instructions into a line item", func() {
			for _, item := range record.Items {
				Expect(item.Name).NotTo(ContainSubstring("Take"))
			}
		})
	})

	When("parsing placeholder template echoes", func() {
		BeforeEach(func() {
			text = "Patient: [Patient Name]\nDoctor: Not found\nMedicine: Not found"
		})

		It("should leave every field unset", func() {
			Expect(record.PatientName).To(BeEmpty())
			Expect(record.DoctorName).To(BeEmpty())
			Expect(record.Items).To(BeEmpty())
		})
	})

	When("the same medicine appears on separate lines", func() {
		BeforeEach(func() {
			text = "Amoxicillin 500mg\nAmoxicillin 500mg"
		})

		It("should keep both duplicates", func() {
			Expect(record.Items).To(HaveLen(2))
			Expect(record.Items[0].Name).To(Equal("Amoxicillin"))
			Expect(record.Items[1].Name).To(Equal("Amoxicillin"))
		})
	})

	When("a line has an unparseable quantity", func() {
		BeforeEach(func() {
			text = "Medicine: Atorvastatin\nQuantity: two boxes"
		})

		It("should keep the item with quantity unset", func() {
			Expect(record.Items).To(HaveLen(1))
			Expect(record.Items[0].Name).To(Equal("Atorvastatin"))
			Expect(record.Items[0].Quantity).To(BeZero())
		})
	})

	When("lines look like instructions", func() {
		BeforeEach(func() {
			text = "Take one tablet twice daily with plenty of water\nRefills: 2\nSignature: ____"
		})

		It("should ignore them", func() {
			Expect(record.Items).To(BeEmpty())
		})
	})

	When("a line carries a numbered list marker", func() {
		BeforeEach(func() {
			text = "1. Sertraline 50mg qty 1\n2. Metformin"
		})

		It("should strip the marker and parse both items", func() {
			Expect(record.Items).To(HaveLen(2))
			Expect(record.Items[0]).To(Equal(LineItem{Name: "Sertraline", Dosage: "50mg", Quantity: 1}))
			Expect(record.Items[1]).To(Equal(LineItem{Name: "Metformin"}))
		})
	})

	When("patient and doctor labels repeat", func() {
		BeforeEach(func() {
			text = "Patient: Jane Doe\nPatient: Someone Else\nDr. Smith\nDoctor: Another Name"
		})

		It("should keep the first occurrence of each", func() {
			Expect(record.PatientName).To(Equal("Jane Doe"))
			Expect(record.DoctorName).To(Equal("Smith"))
		})
	})

	When("a line could match both a label and a line item", func() {
		BeforeEach(func() {
			// "Medicine" followed by a name that would also pass the
			// free-text heuristic on its own
			text = "Medicine: Lisinopril 10mg"
		})

		It("should treat it as a labeled field", func() {
			Expect(record.Items).To(HaveLen(1))
			Expect(record.Items[0].Name).To(Equal("Lisinopril"))
			Expect(record.Items[0].Dosage).To(Equal("10mg"))
		})
	})

	When("parsing a quantity written with a hash", func() {
		BeforeEach(func() {
			text = "Atorvastatin 20mg #3"
		})

		It("should parse the quantity", func() {
			Expect(record.Items).To(HaveLen(1))
			Expect(record.Items[0].Quantity).To(Equal(3))
		})
	})
})
