package dispatcher

import (
	"testing"
)

func TestNotify(t *testing.T) {
	d := New()

	t.Run("calls listeners in registration order", func(t *testing.T) {
		var calls []string
		d.Register("article.added", func(ev Event) bool {
			calls = append(calls, "first")
			return true
		})
		d.Register("article.added", func(ev Event) bool {
			calls = append(calls, "second")
			return false
		})

		d.Notify("article.added", "subject", nil)

		if len(calls) != 2 {
			t.Fatalf("expected 2 calls, got %d", len(calls))
		}
		if calls[0] != "first" || calls[1] != "second" {
			t.Errorf("wrong call order: %v", calls)
		}
	})

	t.Run("passes subject and params through", func(t *testing.T) {
		var got Event
		d.Register("category.moved", func(ev Event) bool {
			got = ev
			return true
		})

		d.Notify("category.moved", 42, map[string]interface{}{"target": int64(7)})

		if got.Name != "category.moved" {
			t.Errorf("event name = %q, want category.moved", got.Name)
		}
		if got.Subject != 42 {
			t.Errorf("subject = %v, want 42", got.Subject)
		}
		if got.Params["target"] != int64(7) {
			t.Errorf("params[target] = %v, want 7", got.Params["target"])
		}
	})

	t.Run("no listeners is a no-op", func(t *testing.T) {
		d.Notify("never.registered", nil, nil)
	})
}

func TestNotifyUntil(t *testing.T) {
	d := New()

	var calls int
	d.Register("slice.before_delete", func(ev Event) bool {
		calls++
		return false
	})
	d.Register("slice.before_delete", func(ev Event) bool {
		calls++
		return true
	})
	d.Register("slice.before_delete", func(ev Event) bool {
		calls++
		return true
	})

	t.Run("stops at the first true", func(t *testing.T) {
		calls = 0
		handled := d.NotifyUntil("slice.before_delete", nil, nil)
		if !handled {
			t.Error("expected NotifyUntil to report handled")
		}
		if calls != 2 {
			t.Errorf("expected 2 calls, got %d", calls)
		}
	})

	t.Run("returns false when nobody handles", func(t *testing.T) {
		if d.NotifyUntil("nobody.listens", nil, nil) {
			t.Error("expected NotifyUntil to report unhandled")
		}
	})
}

func TestFilter(t *testing.T) {
	d := New()

	d.RegisterFilter("article.name", func(ev Event, subject interface{}) interface{} {
		return subject.(string) + "-a"
	})
	d.RegisterFilter("article.name", func(ev Event, subject interface{}) interface{} {
		return subject.(string) + "-b"
	})

	t.Run("folds through filters in order", func(t *testing.T) {
		out := d.Filter("article.name", "base", nil)
		if out != "base-a-b" {
			t.Errorf("filtered value = %v, want base-a-b", out)
		}
	})

	t.Run("no filters returns the subject unchanged", func(t *testing.T) {
		out := d.Filter("untouched", "base", nil)
		if out != "base" {
			t.Errorf("filtered value = %v, want base", out)
		}
	})
}

func TestListenerCount(t *testing.T) {
	d := New()

	if n := d.ListenerCount("x"); n != 0 {
		t.Fatalf("expected 0 listeners, got %d", n)
	}

	d.Register("x", func(ev Event) bool { return true })
	d.Register("x", func(ev Event) bool { return true })

	if n := d.ListenerCount("x"); n != 2 {
		t.Errorf("expected 2 listeners, got %d", n)
	}
}
