package repository

import (
	"context"

	mongotx "probook/pkg/db/mongo"
)

func (r *mongoProfessionalRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
