// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"errors"
	"testing"

	"github.com/CrawX/go-syncml/domain"

	"github.com/emersion/go-imap"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func uidSet(uids ...uint32) *imap.SeqSet {
	seqset := &imap.SeqSet{}
	seqset.AddNum(uids...)
	return seqset
}

func deletedCriteria() *imap.SearchCriteria {
	criteria := imap.NewSearchCriteria()
	criteria.WithFlags = []string{imap.DeletedFlag}
	return criteria
}

func expunging(uids ...uint32) func(ch chan uint32) error {
	return func(ch chan uint32) error {
		for _, uid := range uids {
			ch <- uid
		}
		close(ch)
		return nil
	}
}

func expectFlagDeleted(folder *MockfolderClient, uids ...uint32) *gomock.Call {
	return folder.EXPECT().
		UidStore(gomock.Eq(uidSet(uids...)), gomock.Eq(imap.FormatFlagsOp(imap.AddFlags, true)), gomock.Eq([]interface{}{imap.DeletedFlag}), gomock.Any()).
		Return(nil)
}

func TestObjectRemover_Remove(t *testing.T) {
	tests := []struct {
		name          string
		uids          []uint32
		trash         string
		uidPlus       bool
		move          bool
		setup         func(folder *MockfolderClient, uidPlus *MockuidExpunger, mover *MockuidMover)
		expectedError string
		notReady      bool
	}{
		{
			name:    "replacedversionuidplus",
			uids:    []uint32{7},
			uidPlus: true,
			setup: func(folder *MockfolderClient, uidPlus *MockuidExpunger, mover *MockuidMover) {
				expectFlagDeleted(folder, 7)
				uidPlus.EXPECT().
					UidExpunge(gomock.Eq(uidSet(7)), gomock.Any()).
					DoAndReturn(func(_ *imap.SeqSet, ch chan uint32) error {
						return expunging(7)(ch)
					})
			},
		},
		{
			name:  "deletedcontactsflagandexpunge",
			uids:  []uint32{3, 4},
			setup: func(folder *MockfolderClient, uidPlus *MockuidExpunger, mover *MockuidMover) {
				gomock.InOrder(
					folder.EXPECT().UidSearch(gomock.Eq(deletedCriteria())).Return([]uint32{}, nil),
					expectFlagDeleted(folder, 3, 4),
					folder.EXPECT().Expunge(gomock.Any()).DoAndReturn(expunging(3, 4)),
				)
			},
		},
		{
			name:  "trashwithmove",
			uids:  []uint32{12},
			trash: "SyncML/Trash",
			move:  true,
			setup: func(folder *MockfolderClient, uidPlus *MockuidExpunger, mover *MockuidMover) {
				mover.EXPECT().UidMove(gomock.Eq(uidSet(12)), "SyncML/Trash").Return(nil)
			},
		},
		{
			name:    "trashcopyandexpunge",
			uids:    []uint32{12},
			trash:   "SyncML/Trash",
			uidPlus: true,
			setup: func(folder *MockfolderClient, uidPlus *MockuidExpunger, mover *MockuidMover) {
				gomock.InOrder(
					folder.EXPECT().UidCopy(gomock.Eq(uidSet(12)), "SyncML/Trash").Return(nil),
					expectFlagDeleted(folder, 12),
					uidPlus.EXPECT().
						UidExpunge(gomock.Eq(uidSet(12)), gomock.Any()).
						DoAndReturn(func(_ *imap.SeqSet, ch chan uint32) error {
							return expunging(12)(ch)
						}),
				)
			},
		},
		{
			name:  "trashcopyfails",
			uids:  []uint32{12},
			trash: "SyncML/Trash",
			setup: func(folder *MockfolderClient, uidPlus *MockuidExpunger, mover *MockuidMover) {
				folder.EXPECT().UidSearch(gomock.Eq(deletedCriteria())).Return(nil, nil)
				folder.EXPECT().UidCopy(gomock.Any(), "SyncML/Trash").Return(errors.New("NO [TRYCREATE]"))
			},
			expectedError: "could not copy objects to SyncML/Trash: NO [TRYCREATE]",
		},
		{
			name:  "foreigndeletedflags",
			uids:  []uint32{3},
			setup: func(folder *MockfolderClient, uidPlus *MockuidExpunger, mover *MockuidMover) {
				folder.EXPECT().UidSearch(gomock.Eq(deletedCriteria())).Return([]uint32{1, 2}, nil)
			},
			expectedError: "folder not ready for remove: 2 objects already flagged as deleted",
			notReady:      true,
		},
		{
			name:  "foreigndeletedflagscopy",
			uids:  []uint32{3},
			trash: "SyncML/Trash",
			setup: func(folder *MockfolderClient, uidPlus *MockuidExpunger, mover *MockuidMover) {
				folder.EXPECT().UidSearch(gomock.Eq(deletedCriteria())).Return([]uint32{1}, nil)
			},
			expectedError: "folder not ready for remove: 1 objects already flagged as deleted",
			notReady:      true,
		},
		{
			name:  "searchfails",
			uids:  []uint32{3},
			setup: func(folder *MockfolderClient, uidPlus *MockuidExpunger, mover *MockuidMover) {
				folder.EXPECT().UidSearch(gomock.Any()).Return(nil, errors.New("connection reset"))
			},
			expectedError: "could not search for deleted objects: connection reset",
		},
		{
			name:    "objectvanished",
			uids:    []uint32{3, 4},
			uidPlus: true,
			setup: func(folder *MockfolderClient, uidPlus *MockuidExpunger, mover *MockuidMover) {
				expectFlagDeleted(folder, 3, 4)
				uidPlus.EXPECT().
					UidExpunge(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ *imap.SeqSet, ch chan uint32) error {
						return expunging(3)(ch)
					})
			},
			expectedError: "unexpected number of expunges, expected 2 got 1",
		},
		{
			name:  "nothing",
			setup: func(folder *MockfolderClient, uidPlus *MockuidExpunger, mover *MockuidMover) {
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			folder := NewMockfolderClient(ctrl)
			uidPlus := NewMockuidExpunger(ctrl)
			mover := NewMockuidMover(ctrl)
			tc.setup(folder, uidPlus, mover)

			r := &objectRemover{folder: folder}
			if tc.uidPlus {
				r.uidPlus = uidPlus
			}
			if tc.move {
				r.mover = mover
			}

			err := r.remove(tc.uids, tc.trash)
			if tc.expectedError == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.expectedError)
			assert.Equal(t, tc.notReady, errors.Is(err, domain.ErrFolderNotReady))
		})
	}
}
