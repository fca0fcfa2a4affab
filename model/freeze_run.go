package model

import (
	"time"

	"github.com/exvulsec/codetrace/datastore"
	"github.com/exvulsec/codetrace/utils"
)

// FreezeRun is the summary of one freeze of a datatype over a set of requests.
type FreezeRun struct {
	ID        int64     `json:"id" gorm:"column:id;primaryKey"`
	Chain     string    `json:"chain" gorm:"column:chain"`
	Datatype  Datatype  `json:"datatype" gorm:"column:datatype"`
	Requests  int       `json:"requests" gorm:"column:requests"`
	Succeeded int       `json:"succeeded" gorm:"column:succeeded"`
	Failed    int       `json:"failed" gorm:"column:failed"`
	Skipped   int       `json:"skipped" gorm:"column:skipped"`
	Rows      int       `json:"rows" gorm:"column:rows"`
	Elapsed   string    `json:"elapsed" gorm:"column:elapsed"`
	Failures  []string  `json:"failures" gorm:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (fr *FreezeRun) Create(schema string) error {
	tableName := utils.ComposeTableName(schema, datastore.TableFreezeRuns)
	if fr.CreatedAt.IsZero() {
		fr.CreatedAt = time.Now()
	}
	return datastore.DB().Table(tableName).Omit("id").Create(fr).Error
}

func (fr *FreezeRun) Get(schema string, id int64) error {
	tableName := utils.ComposeTableName(schema, datastore.TableFreezeRuns)
	return datastore.DB().Table(tableName).Where("id = ?", id).Find(fr).Error
}
