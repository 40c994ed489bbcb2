package prescription

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	medicineBucketName     = "medicines"
	orderBucketName        = "orders"
	prescriptionBucketName = "prescriptions"
)

// DB defines the interface for database operations
type DB interface {
	// SaveMedicine inserts or updates an inventory entry, keyed by
	// normalized name
	SaveMedicine(medicine *Medicine) error

	// GetMedicine retrieves an inventory entry by name
	GetMedicine(name string) (*Medicine, error)

	// ListMedicines returns the full inventory snapshot
	ListMedicines() ([]*Medicine, error)

	// SaveOrder saves a procurement order
	SaveOrder(order *Order) error

	// GetOrder retrieves an order by ID
	GetOrder(id string) (*Order, error)

	// ListOrders returns all orders
	ListOrders() ([]*Order, error)

	// SavePrescription saves a processed prescription
	SavePrescription(prescription *Prescription) error

	// GetPrescription retrieves a prescription by ID
	GetPrescription(id string) (*Prescription, error)

	// ListPrescriptions returns all processed prescriptions
	ListPrescriptions() ([]*Prescription, error)

	// DeletePrescription removes a prescription
	DeletePrescription(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance and seeds the inventory with a
// small starter catalog when the medicines bucket is empty.
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{medicineBucketName, orderBucketName, prescriptionBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	b := &BoltDB{db: db}
	if err := b.seedMedicines(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding medicines: %w", err)
	}
	return b, nil
}

// seedMedicines inserts the starter inventory on first run
func (b *BoltDB) seedMedicines() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(medicineBucketName))
		if bucket.Stats().KeyN > 0 {
			return nil
		}

		now := time.Now()
		seed := []Medicine{
			{Name: "Amoxicillin", Dosage: "500mg", Quantity: 100, Price: 12.99},
			{Name: "Lisinopril", Dosage: "10mg", Quantity: 50, Price: 15.50},
			{Name: "Metformin", Dosage: "850mg", Quantity: 60, Price: 8.75},
			{Name: "Atorvastatin", Dosage: "20mg", Quantity: 30, Price: 22.00},
			{Name: "Sertraline", Dosage: "50mg", Quantity: 45, Price: 18.25},
		}
		for _, med := range seed {
			med.CreatedAt = now
			med.UpdatedAt = now
			data, err := json.Marshal(&med)
			if err != nil {
				return fmt.Errorf("marshaling medicine: %w", err)
			}
			if err := bucket.Put([]byte(NormalizeName(med.Name)), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveMedicine inserts or updates an inventory entry
func (b *BoltDB) SaveMedicine(medicine *Medicine) error {
	if medicine.Name == "" {
		return fmt.Errorf("medicine name is required")
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(medicineBucketName))
		data, err := json.Marshal(medicine)
		if err != nil {
			return fmt.Errorf("marshaling medicine: %w", err)
		}
		return bucket.Put([]byte(NormalizeName(medicine.Name)), data)
	})
}

// GetMedicine retrieves an inventory entry by name
func (b *BoltDB) GetMedicine(name string) (*Medicine, error) {
	var medicine *Medicine
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(medicineBucketName))
		data := bucket.Get([]byte(NormalizeName(name)))
		if data == nil {
			return fmt.Errorf("medicine not found: %s", name)
		}
		return json.Unmarshal(data, &medicine)
	})
	if err != nil {
		return nil, err
	}
	return medicine, nil
}

// ListMedicines returns the full inventory snapshot
func (b *BoltDB) ListMedicines() ([]*Medicine, error) {
	medicines := make([]*Medicine, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(medicineBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var medicine Medicine
			if err := json.Unmarshal(v, &medicine); err != nil {
				return fmt.Errorf("unmarshaling medicine: %w", err)
			}
			medicines = append(medicines, &medicine)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return medicines, nil
}

// SaveOrder saves a procurement order
func (b *BoltDB) SaveOrder(order *Order) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(orderBucketName))
		data, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("marshaling order: %w", err)
		}
		return bucket.Put([]byte(order.ID), data)
	})
}

// GetOrder retrieves an order by ID
func (b *BoltDB) GetOrder(id string) (*Order, error) {
	var order *Order
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(orderBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("order not found: %s", id)
		}
		return json.Unmarshal(data, &order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders returns all orders
func (b *BoltDB) ListOrders() ([]*Order, error) {
	orders := make([]*Order, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(orderBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var order Order
			if err := json.Unmarshal(v, &order); err != nil {
				return fmt.Errorf("unmarshaling order: %w", err)
			}
			orders = append(orders, &order)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// SavePrescription saves a processed prescription
func (b *BoltDB) SavePrescription(prescription *Prescription) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(prescriptionBucketName))
		data, err := json.Marshal(prescription)
		if err != nil {
			return fmt.Errorf("marshaling prescription: %w", err)
		}
		return bucket.Put([]byte(prescription.ID), data)
	})
}

// GetPrescription retrieves a prescription by ID
func (b *BoltDB) GetPrescription(id string) (*Prescription, error) {
	var prescription *Prescription
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(prescriptionBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("prescription not found: %s", id)
		}
		return json.Unmarshal(data, &prescription)
	})
	if err != nil {
		return nil, err
	}
	return prescription, nil
}

// ListPrescriptions returns all processed prescriptions
func (b *BoltDB) ListPrescriptions() ([]*Prescription, error) {
	prescriptions := make([]*Prescription, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(prescriptionBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var prescription Prescription
			if err := json.Unmarshal(v, &prescription); err != nil {
				return fmt.Errorf("unmarshaling prescription: %w", err)
			}
			prescriptions = append(prescriptions, &prescription)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return prescriptions, nil
}

// DeletePrescription removes a prescription
func (b *BoltDB) DeletePrescription(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(prescriptionBucketName))
		return bucket.Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
