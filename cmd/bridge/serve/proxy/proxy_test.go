package proxycmder_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	proxycmder "github.com/papercomputeco/bridge/cmd/bridge/serve/proxy"
	"github.com/papercomputeco/bridge/pkg/config"
	"github.com/papercomputeco/bridge/pkg/eventstream/nop"
)

var _ = Describe("NewProxyCmd", func() {
	It("uses the standalone listen flag", func() {
		cmd := proxycmder.NewProxyCmd()

		f := cmd.Flags().Lookup("listen")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("l"))
		Expect(f.DefValue).To(Equal("127.0.0.1:5005"))
		Expect(cmd.Flags().Lookup("proxy-listen")).To(BeNil())
	})
})

var _ = Describe("LoadConfig", func() {
	var (
		configDir string
		keys      []string
	)

	newCmd := func(args ...string) *cobra.Command {
		cmd := proxycmder.NewProxyCmd()
		cmd.Flags().String("config-dir", configDir, "")
		Expect(cmd.ParseFlags(args)).To(Succeed())
		return cmd
	}

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		keys = append([]string{config.FlagProxyListenStandalone}, proxycmder.FlagKeys...)
	})

	It("returns defaults when nothing is configured", func() {
		cfg, err := proxycmder.LoadConfig(newCmd(), keys)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Proxy.Listen).To(Equal("127.0.0.1:5005"))
		Expect(cfg.Proxy.Upstream).To(Equal("http://localhost:1234"))
		Expect(cfg.Proxy.UpstreamPath).To(Equal("/v1/chat/completions"))
		Expect(cfg.Proxy.Model).To(Equal("local-model"))
		Expect(cfg.EventStream.Provider).To(Equal("none"))
	})

	It("prefers flags over the environment over the config file", func() {
		data := `[proxy]
upstream = "http://file:1"
model = "file-model"
listen = ":7000"
`
		Expect(os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
		GinkgoT().Setenv("BRIDGE_PROXY_MODEL", "env-model")
		GinkgoT().Setenv("BRIDGE_PROXY_LISTEN", ":7001")

		cfg, err := proxycmder.LoadConfig(newCmd("--listen", ":7002"), keys)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Proxy.Upstream).To(Equal("http://file:1"))
		Expect(cfg.Proxy.Model).To(Equal("env-model"))
		Expect(cfg.Proxy.Listen).To(Equal(":7002"))
	})

	It("binds the event stream flags", func() {
		cfg, err := proxycmder.LoadConfig(newCmd(
			"--eventstream", "redis",
			"--redis-addr", "localhost:6379",
			"--redis-max-len", "1000",
		), keys)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.EventStream.Provider).To(Equal("redis"))
		Expect(cfg.EventStream.RedisAddr).To(Equal("localhost:6379"))
		Expect(cfg.EventStream.MaxLen).To(Equal(uint(1000)))
	})

	It("rejects unknown event stream providers", func() {
		_, err := proxycmder.LoadConfig(newCmd("--eventstream", "nats"), keys)
		Expect(err).To(MatchError(ContainSubstring("unsupported event stream provider")))
	})
})

var _ = Describe("ProxyConfig", func() {
	It("maps the resolved config onto the proxy", func() {
		cfg := config.NewDefaultConfig()
		cfg.Proxy.Model = "llama3.2"
		publisher := nop.NewPublisher()

		pc := proxycmder.ProxyConfig(cfg, publisher)
		Expect(pc.ListenAddr).To(Equal(cfg.Proxy.Listen))
		Expect(pc.UpstreamURL).To(Equal(cfg.Proxy.Upstream))
		Expect(pc.UpstreamPath).To(Equal(cfg.Proxy.UpstreamPath))
		Expect(pc.UpstreamModel).To(Equal("llama3.2"))
		Expect(pc.BackendType).To(Equal("openai"))
		Expect(pc.Publisher).To(BeIdenticalTo(publisher))
	})
})
