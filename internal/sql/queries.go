package sql

import (
	"embed"
)

// Migrations holds the schema DDL, applied in filename order.
//
//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/register_batch.sql
var RegisterBatch string

//go:embed queries/finish_batch.sql
var FinishBatch string

//go:embed queries/delete_history_batch.sql
var DeleteHistoryBatch string

//go:embed queries/select_history.sql
var SelectHistory string
