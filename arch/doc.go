// Package arch resolves logical instrumentation points to concrete modules
// across heterogeneous model families.
//
// A Config describes one architecture: layer count, hidden size and the path
// templates that locate each component. Known architectures live in a
// process-wide registry seeded with a built-in table (Qwen3, Llama 3.1,
// Mistral, DeepSeek-R1 distills, gpt-oss, Gemma 2); custom architectures are
// added with Register or LoadYAML.
//
// ResolveModel picks a config for a live model in three steps: exact registry
// match on the identity string, case-insensitive substring match, then
// structural inference by walking the module tree for a known family layout.
// Inference fails with ErrUnsupportedArchitecture when no layout matches.
package arch
