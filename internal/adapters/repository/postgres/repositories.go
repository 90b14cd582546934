package postgres

import (
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
	pgdb "github.com/ogurasousui/codex-grpc-workforce/internal/platform/db/postgres"
)

// NewRepositories は PostgreSQL 実装のリポジトリ一式を生成します。
// トランザクションはコンテキスト経由で各リポジトリに伝播されます。
func NewRepositories(pool pgdb.Queryer) workforce.Repositories {
	return workforce.Repositories{
		Employees:   NewEmployeeRepository(pool),
		Accounts:    NewAccountRepository(pool),
		Stores:      NewStoreRepository(pool),
		Flavors:     NewFlavorRepository(pool),
		Jobs:        NewJobRepository(pool),
		Assignments: NewAssignmentRepository(pool),
		Shifts:      NewShiftRepository(pool),
	}
}
