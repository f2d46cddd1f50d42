// Package agentscript provides a high-level façade over the AgentScript
// language runtime: parser, interpreter, agent runtime, message bus and tool
// registry. Most applications interact with this package by:
//  1. Creating a Session via New() (optionally overriding the config, tool
//     registry, model resolver or output writer)
//  2. Running one or more scripts with Session.Run
//  3. Inspecting results through the read-only introspection methods
//     (Agents, BusStats, ToolStats, History)
//
// The façade delegates execution to interp.Interpreter while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing: scripts run offline against a deterministic echo responder
// unless model providers are configured.
package agentscript

import (
	"io"
	"os"

	"github.com/hupe1980/agentscript/bus"
	"github.com/hupe1980/agentscript/config"
	"github.com/hupe1980/agentscript/core"
	"github.com/hupe1980/agentscript/interp"
	"github.com/hupe1980/agentscript/logging"
	"github.com/hupe1980/agentscript/model"
	"github.com/hupe1980/agentscript/model/anthropic"
	"github.com/hupe1980/agentscript/model/openai"
	"github.com/hupe1980/agentscript/parser"
	"github.com/hupe1980/agentscript/runtime"
	"github.com/hupe1980/agentscript/tool"
)

// Options configures a Session.
type Options struct {
	// Config holds runtime settings. Defaults to config.Defaults().
	Config *config.Config
	// Tools is the registry scripts execute tools against. Defaults to the
	// built-in registry.
	Tools *tool.Registry
	// Resolver maps model references to responders. When nil, a resolver is
	// built from Config.Providers; descriptors without a configured provider
	// answer via the deterministic echo responder.
	Resolver *model.Resolver
	// Output receives print statement text. Defaults to os.Stdout.
	Output io.Writer
	// Logger receives structured diagnostics. When nil it is built from
	// Config's logging section.
	Logger logging.Logger
}

// Session is the high-level façade aggregating the runtime and interpreter.
type Session struct {
	id     string
	opts   Options
	rt     *runtime.Runtime
	interp *interp.Interpreter
}

// New creates a Session with optional overrides. Any unset collaborator is
// initialized from the config defaults.
func New(optFns ...func(o *Options)) *Session {
	opts := Options{
		Output: os.Stdout,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Config == nil {
		opts.Config = config.Defaults()
	}
	if opts.Tools == nil {
		opts.Tools = tool.NewBuiltinRegistry()
	}
	if opts.Resolver == nil {
		opts.Resolver = resolverFromConfig(opts.Config)
	}

	id := core.NewID()
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(&logging.LoggerConfig{
			Level:     logging.ParseLevel(opts.Config.Logging.Level),
			Format:    opts.Config.Logging.Format,
			Output:    os.Stderr,
			Component: "session",
			SessionID: id,
		})
	}

	b := bus.New(func(o *bus.Options) {
		o.HistoryLimit = opts.Config.Bus.HistoryLimit
		o.MailboxSize = opts.Config.Bus.MailboxSize
		o.Logger = opts.Logger
	})
	rt := runtime.New(func(o *runtime.Options) {
		o.Bus = b
		o.Tools = opts.Tools
		o.Resolver = opts.Resolver
		o.Logger = opts.Logger
	})
	in := interp.New(rt, func(o *interp.Options) {
		o.Output = opts.Output
		o.AskTimeout = opts.Config.Bus.AskTimeout
		o.Logger = opts.Logger
	})

	return &Session{id: id, opts: opts, rt: rt, interp: in}
}

// resolverFromConfig registers SDK providers for every configured provider
// section.
func resolverFromConfig(cfg *config.Config) *model.Resolver {
	r := model.NewResolver()
	if p, ok := cfg.Providers["openai"]; ok {
		r.RegisterProvider("openai", openai.NewProvider(func(o *openai.Options) {
			o.APIKey = p.APIKey
			o.BaseURL = p.BaseURL
			if p.Temperature > 0 {
				o.Temperature = p.Temperature
			}
			if p.MaxTokens > 0 {
				o.MaxCompletionTokens = p.MaxTokens
			}
		}))
	}
	if p, ok := cfg.Providers["anthropic"]; ok {
		r.RegisterProvider("anthropic", anthropic.NewProvider(func(o *anthropic.Options) {
			o.APIKey = p.APIKey
			o.BaseURL = p.BaseURL
			if p.Temperature > 0 {
				o.Temperature = p.Temperature
			}
			if p.MaxTokens > 0 {
				o.MaxTokens = p.MaxTokens
			}
		}))
	}
	return r
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Run parses and executes a script. Syntax errors carry line/column; runtime
// errors carry the position of the failing construct.
func (s *Session) Run(source string) error {
	program, err := parser.Parse(source)
	if err != nil {
		return err
	}
	return s.interp.Execute(program)
}

// RunFile reads and runs a script file.
func (s *Session) RunFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return s.Run(string(data))
}

// Agents returns metadata for all spawned agents.
func (s *Session) Agents() []core.AgentInfo { return s.rt.Agents() }

// Agent returns the live agent with the given script name.
func (s *Session) Agent(name string) (*runtime.Agent, bool) { return s.rt.Lookup(name) }

// BusStats returns a snapshot of the bus delivery accounting.
func (s *Session) BusStats() bus.Stats { return s.rt.Bus().Snapshot() }

// ToolStats returns per-tool usage counters.
func (s *Session) ToolStats() map[string]tool.Usage { return s.rt.Tools().Stats() }

// History returns the most recent routed messages, newest last.
func (s *Session) History(limit int) []*core.Message { return s.rt.Bus().History(limit) }

// Close stops all agent workers and shuts down the bus.
func (s *Session) Close() { s.rt.Close() }
