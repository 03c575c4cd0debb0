// Package service implements the content managers: the category tree,
// article revisions, slice placement and the trash. All mutations run
// inside one transaction via repository.Store.Transactional and fire
// before/after notifications through a Notifier.
package service

import (
	"database/sql"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	pkgerrors "github.com/pkg/errors"

	"github.com/slatecms/slate/cms"
)

// Notifier receives structural-mutation notifications. Listeners run
// synchronously on the caller's stack, inside the caller's
// transaction, and must not mutate tree state.
type Notifier interface {
	Notify(name string, subject interface{}, params map[string]interface{})
}

// nopNotifier is used when a service is constructed without a
// dispatcher, mostly in tests.
type nopNotifier struct{}

func (nopNotifier) Notify(string, interface{}, map[string]interface{}) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// strictPolicy strips all HTML from operator-supplied names before
// they hit the database.
var strictPolicy = bluemonday.StrictPolicy()

func cleanName(name string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(name))
}

// asDomainErr maps a storage-level "no rows" onto a domain sentinel
// and passes every other error through.
func asDomainErr(err, sentinel error) error {
	if pkgerrors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

func actorLogin(actor *cms.User) string {
	if actor == nil || actor.Login == "" {
		return cms.SystemUser().Login
	}
	return actor.Login
}
