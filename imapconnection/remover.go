// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

//go:generate mockgen -destination=remover_mocks_test.go -package=imapconnection -source remover.go
import (
	"fmt"

	"github.com/CrawX/go-syncml/domain"

	"github.com/emersion/go-imap"
)

type folderClient interface {
	UidStore(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error
	UidSearch(criteria *imap.SearchCriteria) ([]uint32, error)
	UidCopy(seqset *imap.SeqSet, dest string) error
	Expunge(ch chan uint32) error
}

type uidExpunger interface {
	UidExpunge(seqset *imap.SeqSet, ch chan uint32) error
}

type uidMover interface {
	UidMove(seqset *imap.SeqSet, dest string) error
}

// objectRemover takes groupware objects out of the selected folder, either
// for good or into a trash folder. uidPlus and mover are nil when the server
// lacks UIDPLUS or MOVE.
type objectRemover struct {
	folder  folderClient
	uidPlus uidExpunger
	mover   uidMover
}

// ready fails with domain.ErrFolderNotReady when a plain EXPUNGE would also
// remove objects some other client flagged as deleted.
func (r *objectRemover) ready(trash string) error {
	if r.uidPlus != nil || (len(trash) > 0 && r.mover != nil) {
		return nil
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithFlags = []string{imap.DeletedFlag}
	flagged, err := r.folder.UidSearch(criteria)
	if err != nil {
		return fmt.Errorf("could not search for deleted objects: %w", err)
	}

	if len(flagged) > 0 {
		return fmt.Errorf("%w: %d objects already flagged as deleted", domain.ErrFolderNotReady, len(flagged))
	}
	return nil
}

func (r *objectRemover) remove(uids []uint32, trash string) error {
	if len(uids) == 0 {
		return nil
	}

	err := r.ready(trash)
	if err != nil {
		return err
	}

	seqset := &imap.SeqSet{}
	seqset.AddNum(uids...)

	if len(trash) > 0 {
		if r.mover != nil {
			err = r.mover.UidMove(seqset, trash)
			if err != nil {
				return fmt.Errorf("could not move objects to %s: %w", trash, err)
			}
			return nil
		}

		err = r.folder.UidCopy(seqset, trash)
		if err != nil {
			return fmt.Errorf("could not copy objects to %s: %w", trash, err)
		}
	}

	return r.expunge(seqset, len(uids))
}

func (r *objectRemover) expunge(seqset *imap.SeqSet, count int) error {
	err := r.folder.UidStore(seqset, imap.FormatFlagsOp(imap.AddFlags, true), []interface{}{imap.DeletedFlag}, nil)
	if err != nil {
		return fmt.Errorf("could not flag objects as deleted: %w", err)
	}

	out := make(chan uint32)
	done := make(chan error, 1)
	go func() {
		if r.uidPlus != nil {
			done <- r.uidPlus.UidExpunge(seqset, out)
		} else {
			done <- r.folder.Expunge(out)
		}
	}()

	expunged := 0
	for range out {
		expunged++
	}

	err = <-done
	if err != nil {
		return fmt.Errorf("could not expunge objects: %w", err)
	}

	if expunged != count {
		return fmt.Errorf("unexpected number of expunges, expected %d got %d", count, expunged)
	}
	return nil
}
