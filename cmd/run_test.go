package cmd

import (
	"bytes"
	"image/png"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/twpayne/go-vfs"
	"github.com/twpayne/go-vfs/vfst"

	"github.com/samuelfneumann/modelrl/experiment"
	"github.com/samuelfneumann/modelrl/experiment/trackers"
)

var _ = Describe("Commands", Label("cmd"), func() {
	var fs vfs.FS
	var cleanup func()
	var root *cobra.Command

	BeforeEach(func() {
		var err error
		fs, cleanup, err = vfst.NewTestFS(map[string]interface{}{
			"/out": &vfst.Dir{Perm: 0o755},
			"/etc/modelrl/config.yaml": `
experiment:
  checkpoint_prefix: /out/ckpt
`,
			"/etc/modelrl/bad.yaml": `
agent:
  discount_rate: 3
`,
		})
		Expect(err).ShouldNot(HaveOccurred())
		appFS = fs
		root = newTestRootCmd()
	})
	AfterEach(func() {
		viper.Reset()
		appFS = vfs.OSFS
		cleanup()
	})

	Describe("config", Label("config"), func() {
		It("prints the default configuration", func() {
			_, output, err := executeCommandC(root, nil, "config")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(output).To(ContainSubstring("discount_rate: 0.5"))
			Expect(output).To(ContainSubstring("acceptable_error: 0.05"))
			Expect(output).To(ContainSubstring("initial_action: W"))
		})
		It("merges the config file", func() {
			_, output, err := executeCommandC(root, nil, "config",
				"--config", "/etc/modelrl/config.yaml")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(output).To(ContainSubstring("checkpoint_prefix: /out/ckpt"))
		})
		It("fails validation of an invalid configuration", func() {
			_, _, err := executeCommandC(root, nil, "config", "--validate",
				"--config", "/etc/modelrl/bad.yaml")
			Expect(err).Should(HaveOccurred())
		})
	})

	Describe("run", Label("run"), func() {
		It("runs a batch of ticks", Label("batch"), func() {
			_, output, err := executeCommandC(root, nil, "run",
				"--config", "/etc/modelrl/config.yaml", "--steps", "10",
				"--checkpoint-every", "5", "--rewards", "/out/rewards.gob")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(output).To(ContainSubstring("ticks: 10"))
			Expect(output).To(ContainSubstring("mean reward:"))
			Expect(output).To(ContainSubstring("100.00%"))

			rewards, err := trackers.LoadData(fs, "/out/rewards.gob")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(rewards).To(HaveLen(10))
			for _, r := range rewards {
				Expect(r).To(BeNumerically(">=", 1))
				Expect(r).To(BeNumerically("<=", 3))
			}

			session, err := experiment.Load(fs, "/out/ckpt-10.gob", nil)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(session.Ticks()).To(Equal(10))
			_, err = fs.Stat("/out/ckpt-5.gob")
			Expect(err).ShouldNot(HaveOccurred())
		})
		It("refuses to overwrite checkpoints", Label("batch"), func() {
			_, _, err := executeCommandC(root, nil, "run", "--config",
				"/etc/modelrl/config.yaml", "--steps", "5",
				"--checkpoint-every", "5")
			Expect(err).ShouldNot(HaveOccurred())

			viper.Reset()
			root = newTestRootCmd()
			_, _, err = executeCommandC(root, nil, "run", "--config",
				"/etc/modelrl/config.yaml", "--steps", "5",
				"--checkpoint-every", "5")
			Expect(err).Should(HaveOccurred())
		})
		It("resumes a saved session", Label("batch"), func() {
			_, _, err := executeCommandC(root, nil, "run", "--config",
				"/etc/modelrl/config.yaml", "--steps", "4",
				"--checkpoint-every", "4")
			Expect(err).ShouldNot(HaveOccurred())

			viper.Reset()
			root = newTestRootCmd()
			_, output, err := executeCommandC(root, nil, "run", "--config",
				"/etc/modelrl/config.yaml", "--steps", "3", "--load",
				"/out/ckpt-4.gob")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(output).To(ContainSubstring("ticks: 7"))
		})
		It("runs commands interactively", Label("repl"), func() {
			in := strings.NewReader(strings.Join([]string{
				"next",
				"next -m",
				"next --bogus",
				"show pos",
				"show values",
				"show agent",
				"show nothing",
				"bogus",
				"",
				"save /out/session.gob",
				"save /out/session.gob",
				"load /out/session.gob",
				"load /out/missing.gob",
				"exit",
				"next",
			}, "\n"))

			_, output, err := executeCommandC(root, in, "run", "--color=false")
			Expect(err).ShouldNot(HaveOccurred())

			Expect(output).To(HavePrefix("Commands:"))
			Expect(output).To(ContainSubstring("ACTION W\nSTATE  (3,1,1,3)\nREWARD 1\n"))
			Expect(strings.Count(output, "ACTION ")).To(Equal(3))
			Expect(output).To(ContainSubstring("+ 012345"))
			Expect(output).To(ContainSubstring("pos_x:"))
			Expect(output).To(ContainSubstring("DiscountRate: 0.5"))
			Expect(output).To(ContainSubstring("(3,3,3,3)"))
			Expect(output).To(ContainSubstring("ERROR: invalid command"))
			Expect(strings.Count(output, "ERROR: invalid arguments")).To(Equal(2))
			Expect(output).To(ContainSubstring("file saved: success"))
			Expect(output).To(ContainSubstring("file saved: error"))
			Expect(output).To(ContainSubstring("file loaded: success"))
			Expect(output).To(ContainSubstring("file loaded: error"))

			session, err := experiment.Load(fs, "/out/session.gob", nil)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(session.Ticks()).To(Equal(2))
		})
		It("rejects an invalid configuration", func() {
			_, _, err := executeCommandC(root, nil, "run", "--config",
				"/etc/modelrl/bad.yaml", "--steps", "1")
			Expect(err).Should(HaveOccurred())
		})
	})

	Describe("render", Label("render"), func() {
		It("renders the configured map", func() {
			_, output, err := executeCommandC(root, nil, "render", "-o",
				"/out/map.png", "--cell-size", "10")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(output).To(ContainSubstring("rendered /out/map.png"))

			data, err := fs.ReadFile("/out/map.png")
			Expect(err).ShouldNot(HaveOccurred())
			img, err := png.Decode(bytes.NewReader(data))
			Expect(err).ShouldNot(HaveOccurred())
			Expect(img.Bounds().Dx()).To(Equal(60))
			Expect(img.Bounds().Dy()).To(Equal(60))
		})
		It("rejects a non-positive cell size", func() {
			_, _, err := executeCommandC(root, nil, "render", "-o",
				"/out/map.png", "--cell-size", "0")
			Expect(err).Should(HaveOccurred())
		})
	})

	Describe("plot", Label("plot"), func() {
		It("plots saved rewards", func() {
			_, _, err := executeCommandC(root, nil, "run", "--steps", "6",
				"--rewards", "/out/rewards.gob")
			Expect(err).ShouldNot(HaveOccurred())

			viper.Reset()
			root = newTestRootCmd()
			_, output, err := executeCommandC(root, nil, "plot",
				"/out/rewards.gob", "-o", "/out/rewards.html")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(output).To(ContainSubstring("plotted 6 rewards"))

			html, err := fs.ReadFile("/out/rewards.html")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(string(html)).To(ContainSubstring("Running Mean"))
		})
		It("fails on a missing rewards file", func() {
			_, _, err := executeCommandC(root, nil, "plot", "/out/missing.gob")
			Expect(err).Should(HaveOccurred())
		})
	})
})
