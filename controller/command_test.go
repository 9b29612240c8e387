package controller

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cassieopeanuts/sithtipahpreview/dao"
	"github.com/cassieopeanuts/sithtipahpreview/logic"
)

const testAddress = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func newTestController(t *testing.T) (*CommandController, *dao.UserDAO) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.Join(t.TempDir(), "tipbot.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	userDAO := dao.NewUserDAO(db)
	require.NoError(t, userDAO.Migrate(context.Background()))

	ledger := logic.NewLedgerLogic(userDAO, logic.LedgerConfig{
		DefaultBalance:  0,
		FaucetAmount:    5,
		FaucetThreshold: 1,
	})
	return NewCommandController(ledger), userDAO
}

func TestDispatchUnknownCommand(t *testing.T) {
	c, _ := newTestController(t)

	reply, ok := c.Dispatch(context.Background(), "100", "dance", nil)
	require.False(t, ok)
	require.Empty(t, reply)
}

func TestDispatchHelp(t *testing.T) {
	c, _ := newTestController(t)

	reply, ok := c.Dispatch(context.Background(), "100", "tiphelp", nil)
	require.True(t, ok)
	for _, cmd := range []string{"register", "update", "balance", "tip", "giveme5", "tiphelp"} {
		require.Contains(t, reply, cmd)
	}
}

func TestDispatchArityValidation(t *testing.T) {
	c, userDAO := newTestController(t)
	ctx := context.Background()

	cases := []struct {
		command string
		args    []string
	}{
		{"register", nil},
		{"register", []string{testAddress, "extra"}},
		{"update", nil},
		{"balance", []string{"extra"}},
		{"tip", []string{"200"}},
		{"tip", []string{"200", "3", "extra"}},
		{"giveme5", []string{"extra"}},
	}
	for _, tc := range cases {
		reply, ok := c.Dispatch(ctx, "100", tc.command, tc.args)
		require.True(t, ok, "command %s", tc.command)
		require.NotEmpty(t, reply, "command %s", tc.command)
	}

	// Validation failures never reach the store
	_, err := userDAO.GetUser(ctx, "100")
	require.ErrorIs(t, err, dao.ErrUserNotFound)
}

func TestDispatchTipAmountValidation(t *testing.T) {
	c, userDAO := newTestController(t)
	ctx := context.Background()

	_, err := userDAO.CreateUser(ctx, "100", testAddress, 5)
	require.NoError(t, err)

	for _, amount := range []string{"abc", "0", "-1", "2.5"} {
		reply, ok := c.Dispatch(ctx, "100", "tip", []string{"200", amount})
		require.True(t, ok)
		require.Contains(t, reply, "positive integer")
	}

	balance, err := userDAO.GetBalance(ctx, "100")
	require.NoError(t, err)
	require.EqualValues(t, 5, balance)
}

func TestDispatchRegisterBalanceFlow(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	reply, ok := c.Dispatch(ctx, "100", "register", []string{testAddress})
	require.True(t, ok)
	require.Contains(t, reply, "registered")

	reply, ok = c.Dispatch(ctx, "100", "register", []string{testAddress})
	require.True(t, ok)
	require.Contains(t, reply, "already registered")

	reply, ok = c.Dispatch(ctx, "100", "balance", nil)
	require.True(t, ok)
	require.Equal(t, "Your balance is 0", reply)

	reply, ok = c.Dispatch(ctx, "100", "register", []string{"not-an-address"})
	require.True(t, ok)
	require.Contains(t, reply, "Invalid address")
}

func TestDispatchTipFlow(t *testing.T) {
	c, userDAO := newTestController(t)
	ctx := context.Background()

	_, err := userDAO.CreateUser(ctx, "100", testAddress, 5)
	require.NoError(t, err)

	reply, ok := c.Dispatch(ctx, "100", "tip", []string{"<@200>", "3"})
	require.True(t, ok)
	require.Contains(t, reply, "100")
	require.Contains(t, reply, "200")
	require.Contains(t, reply, "3")

	balance, err := userDAO.GetBalance(ctx, "200")
	require.NoError(t, err)
	require.EqualValues(t, 3, balance)

	reply, ok = c.Dispatch(ctx, "100", "tip", []string{"100", "1"})
	require.True(t, ok)
	require.Contains(t, reply, "yourself")

	reply, ok = c.Dispatch(ctx, "100", "tip", []string{"200", "100"})
	require.True(t, ok)
	require.Contains(t, reply, "enough balance")
}

func TestDispatchFaucetFlow(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	reply, ok := c.Dispatch(ctx, "100", "giveme5", nil)
	require.True(t, ok)
	require.Contains(t, reply, "not registered")

	_, ok = c.Dispatch(ctx, "100", "register", []string{testAddress})
	require.True(t, ok)

	reply, ok = c.Dispatch(ctx, "100", "giveme5", nil)
	require.True(t, ok)
	require.Contains(t, reply, "balance is now 5")

	reply, ok = c.Dispatch(ctx, "100", "giveme5", nil)
	require.True(t, ok)
	require.Contains(t, reply, "your balance is 5")
}

func TestStripMention(t *testing.T) {
	require.Equal(t, "200", stripMention("200"))
	require.Equal(t, "200", stripMention("@200"))
	require.Equal(t, "200", stripMention("<@200>"))
	require.Equal(t, "", stripMention("<@>"))
	require.Equal(t, "abc", stripMention("abc"))
}
