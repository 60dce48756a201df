package repositories

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"imobilBack/internal/models"
)

// translateIntegrityError maps MySQL integrity violations onto the
// domain sentinels. References are validated before any write, so a
// 1452 here means the referenced row vanished mid-flight.
func translateIntegrityError(err error) error {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return err
	}
	switch mysqlErr.Number {
	case 1451:
		return fmt.Errorf("%w: %s", models.ErrReferenceInUse, mysqlErr.Message)
	case 1452:
		return fmt.Errorf("%w: %s", models.ErrReferenceNotFound, mysqlErr.Message)
	}
	return err
}
