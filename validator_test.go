// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dbcp

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return db, mock
}

func TestValidator_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		expect func(sqlmock.Sqlmock)
		want   bool
		err    error
	}{
		{
			name: "row returned",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT 1").
					WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1)).
					RowsWillBeClosed()
			},
			want: true,
		},
		{
			name: "no rows",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT 1").
					WillReturnRows(sqlmock.NewRows([]string{"1"})).
					RowsWillBeClosed()
			},
			want: false,
		},
		{
			name: "query fails",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT 1").WillReturnError(errors.New("connection reset by peer"))
			},
			want: false,
			err:  ErrValidation,
		},
		{
			name: "row fails",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT 1").
					WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1).RowError(0, errors.New("bad row"))).
					RowsWillBeClosed()
			},
			want: false,
			err:  ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			tt.expect(mock)

			ok, err := DefaultValidator().IsValid(context.Background(), db)
			assert.Equal(t, tt.want, ok)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_CustomQuery(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT 1 FROM DUAL").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1)).
		RowsWillBeClosed()

	v, err := NewValidator("SELECT 1 FROM DUAL")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM DUAL", v.Query())

	ok, err := v.IsValid(context.Background(), db)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidator_EmptyQuery(t *testing.T) {
	_, err := NewValidator("")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.ErrorIs(t, err, ErrValidation)

	var zero Validator
	ok, err := zero.IsValid(context.Background(), nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	var nilValidator *Validator
	ok, err = nilValidator.IsValid(context.Background(), nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestDefaultValidator(t *testing.T) {
	assert.Equal(t, DefaultProbeQuery, DefaultValidator().Query())
	assert.Equal(t, "SELECT 1", DefaultProbeQuery)
}
