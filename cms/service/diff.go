package service

import (
	"context"
	"html"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/slatecms/slate/cms"
	"github.com/slatecms/slate/cms/repository"
)

// DiffRevisions renders an HTML ins/del diff of the slice content of
// two revisions of an article. Slices are flattened slot by slot,
// position by position, into a plain-text document before diffing.
func (s *SliceService) DiffRevisions(ctx context.Context, articleID, clang int64, revA, revB int) (string, error) {
	var oldText, newText string
	err := s.store.Transactional(ctx, func(tx repository.Store) error {
		var err error
		oldText, err = flattenRevision(ctx, tx, articleID, clang, revA)
		if err != nil {
			return err
		}
		newText, err = flattenRevision(ctx, tx, articleID, clang, revB)
		return err
	})
	if err != nil {
		return "", err
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var buff strings.Builder
	for _, diff := range diffs {
		text := html.EscapeString(diff.Text)
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			buff.WriteString(`<ins style="background:#e6ffe6;">`)
			buff.WriteString(text)
			buff.WriteString(`</ins>`)
		case diffmatchpatch.DiffDelete:
			buff.WriteString(`<del style="background:#ffe6e6;">`)
			buff.WriteString(text)
			buff.WriteString(`</del>`)
		case diffmatchpatch.DiffEqual:
			buff.WriteString(`<span>`)
			buff.WriteString(text)
			buff.WriteString(`</span>`)
		}
	}
	return buff.String(), nil
}

// flattenRevision turns every placement of one revision into a stable
// textual form: slot and position headers followed by the slice's
// key/value pairs in key order.
func flattenRevision(ctx context.Context, tx repository.Store, articleID, clang int64, revision int) (string, error) {
	if _, err := tx.GetArticleRevision(ctx, articleID, clang, revision); err != nil {
		return "", asDomainErr(err, cms.ErrArticleNotFound)
	}

	placements, err := tx.FindArticleSlices(ctx, articleID, clang, revision, repository.AllSlots)
	if err != nil {
		return "", err
	}

	var buff strings.Builder
	for _, p := range placements {
		sl, err := tx.GetSlice(ctx, p.SliceID)
		if err != nil {
			return "", asDomainErr(err, cms.ErrSliceNotFound)
		}

		buff.WriteString(p.Slot)
		buff.WriteString("[")
		buff.WriteString(strings.TrimSpace(sl.Module))
		buff.WriteString("]\n")

		keys := make([]string, 0, len(sl.Values))
		for k := range sl.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			buff.WriteString(k)
			buff.WriteString(": ")
			buff.WriteString(sl.Values[k])
			buff.WriteString("\n")
		}
		buff.WriteString("\n")
	}
	return buff.String(), nil
}
