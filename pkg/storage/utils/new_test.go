package storageutils_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/bridge/pkg/storage/inmemory"
	"github.com/papercomputeco/bridge/pkg/storage/sqlite"
	storageutils "github.com/papercomputeco/bridge/pkg/storage/utils"
)

var _ = Describe("NewDriver", func() {
	ctx := context.Background()

	It("falls back to in-memory storage", func() {
		driver, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{})
		Expect(err).NotTo(HaveOccurred())
		defer driver.Close()

		Expect(driver).To(BeAssignableToTypeOf(&inmemory.Driver{}))
	})

	It("opens a SQLite database when a path is set", func() {
		path := filepath.Join(GinkgoT().TempDir(), "bridge.db")

		driver, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{SQLitePath: path})
		Expect(err).NotTo(HaveOccurred())
		defer driver.Close()

		Expect(driver).To(BeAssignableToTypeOf(&sqlite.SQLiteDriver{}))
		Expect(path).To(BeAnExistingFile())
	})

	It("rejects both backends at once", func() {
		_, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{
			SQLitePath:  "bridge.db",
			PostgresDSN: "postgres://localhost/bridge",
		})
		Expect(err).To(MatchError(ContainSubstring("only one of")))
	})
})
