package content

import (
	"gorm.io/gorm"

	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
)

func conn(db *gorm.DB, dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = db
	}
	return t.WithContext(dbc.Context())
}
