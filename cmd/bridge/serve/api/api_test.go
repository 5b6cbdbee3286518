package apicmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apicmder "github.com/papercomputeco/bridge/cmd/bridge/serve/api"
)

var _ = Describe("NewAPICmd", func() {
	It("registers listen and storage flags", func() {
		cmd := apicmder.NewAPICmd()

		listen := cmd.Flags().Lookup("listen")
		Expect(listen).NotTo(BeNil())
		Expect(listen.DefValue).To(Equal("127.0.0.1:5006"))
		Expect(cmd.Flags().Lookup("sqlite")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("postgres")).NotTo(BeNil())
	})

	It("does not expose proxy flags", func() {
		cmd := apicmder.NewAPICmd()
		Expect(cmd.Flags().Lookup("upstream")).To(BeNil())
	})
})
