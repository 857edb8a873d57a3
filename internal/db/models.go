package db

import (
	"time"
)

type StorageSlot struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}
