package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderNumberPrefix is the fixed human-readable prefix on every order number.
const OrderNumberPrefix = "ORD"

// GenerateOrderNumber builds a unique, human-readable order identifier:
// ORD-<yyMMddHHmmss>-<4 random chars>. The random suffix disambiguates
// orders created in the same second; the unique index on orderNumber is the
// final guard, and callers retry on a duplicate-key insert.
func GenerateOrderNumber() string {
	ts := time.Now().Format("060102150405")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("%s-%s-%s", OrderNumberPrefix, ts, suffix)
}
