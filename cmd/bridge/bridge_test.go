package bridgecmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	bridgecmder "github.com/papercomputeco/bridge/cmd/bridge"
)

var _ = Describe("NewBridgeCmd", func() {
	It("registers every subcommand", func() {
		cmd := bridgecmder.NewBridgeCmd()

		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("config", "init", "serve", "stats", "version"))
	})

	It("carries the global debug and config-dir flags", func() {
		cmd := bridgecmder.NewBridgeCmd()

		debug := cmd.PersistentFlags().Lookup("debug")
		Expect(debug).NotTo(BeNil())
		Expect(debug.Shorthand).To(Equal("d"))
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})

	It("prints the version", func() {
		cmd := bridgecmder.NewBridgeCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"version"})

		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Version: dev"))
	})

	It("reads config values through the config-dir flag", func() {
		dir := GinkgoT().TempDir()

		set := bridgecmder.NewBridgeCmd()
		set.SetOut(&bytes.Buffer{})
		set.SetArgs([]string{"--config-dir", dir, "config", "set", "proxy.model", "qwen2.5"})
		Expect(set.Execute()).To(Succeed())

		var out bytes.Buffer
		get := bridgecmder.NewBridgeCmd()
		get.SetOut(&out)
		get.SetArgs([]string{"--config-dir", dir, "config", "get", "proxy.model"})
		Expect(get.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("qwen2.5"))
	})
})
