package prescription

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage *LocalStorage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewLocalStorage", func() {
		It("creates the base directory when missing", func() {
			nested := filepath.Join(tmpDir, "a", "b")
			_, err := NewLocalStorage(nested)
			Expect(err).NotTo(HaveOccurred())

			info, statErr := os.Stat(nested)
			Expect(statErr).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})
	})

	Describe("Save", func() {
		var (
			path string
			err  error
		)

		JustBeforeEach(func() {
			path, err = storage.Save("scan.jpg", []byte("image data"))
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the filename", func() {
			Expect(path).To(Equal("scan.jpg"))
		})

		It("should write the file to disk", func() {
			data, readErr := os.ReadFile(filepath.Join(tmpDir, "scan.jpg"))
			Expect(readErr).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("image data"))
		})
	})

	Describe("Get", func() {
		When("the file exists", func() {
			BeforeEach(func() {
				_, err := storage.Save("scan.jpg", []byte("image data"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("returns the file contents", func() {
				data, err := storage.Get("scan.jpg")
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal("image data"))
			})
		})

		When("the file does not exist", func() {
			It("returns an error", func() {
				_, err := storage.Get("missing.jpg")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Delete", func() {
		When("the file exists", func() {
			BeforeEach(func() {
				_, err := storage.Save("scan.jpg", []byte("image data"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("removes the file", func() {
				Expect(storage.Delete("scan.jpg")).To(Succeed())
				_, err := os.Stat(filepath.Join(tmpDir, "scan.jpg"))
				Expect(os.IsNotExist(err)).To(BeTrue())
			})
		})

		When("the file does not exist", func() {
			It("returns an error", func() {
				Expect(storage.Delete("missing.jpg")).To(HaveOccurred())
			})
		})
	})

	Describe("List", func() {
		When("files are stored", func() {
			BeforeEach(func() {
				_, err := storage.Save("q1.pdf", []byte("report"))
				Expect(err).NotTo(HaveOccurred())
				_, err = storage.Save("q2.pdf", []byte("report"))
				Expect(err).NotTo(HaveOccurred())
				Expect(os.Mkdir(filepath.Join(tmpDir, "subdir"), 0755)).NotTo(HaveOccurred())
			})

			It("returns only regular files", func() {
				names, err := storage.List()
				Expect(err).NotTo(HaveOccurred())
				Expect(names).To(ConsistOf("q1.pdf", "q2.pdf"))
			})
		})

		When("the directory is empty", func() {
			It("returns an empty list", func() {
				names, err := storage.List()
				Expect(err).NotTo(HaveOccurred())
				Expect(names).To(BeEmpty())
			})
		})
	})
})
