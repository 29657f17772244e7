// Package reasoning defines the boundary between the host and the component
// that decides what to do with a user utterance.
//
// A Reasoner receives the utterance, the capabilities currently available and
// the conversation so far, and answers with exactly one Outcome: either Text
// (a final answer for the user) or Invocation (call this capability with these
// arguments). The variant is decided once, here, so the host never has to
// probe a response to find out what kind it is.
//
// Two implementations are provided:
//
//   - DirectiveReasoner parses "<capability> key=value ..." style input. It
//     needs no model and is fully deterministic.
//   - AzureOpenAIReasoner asks an Azure OpenAI chat deployment, offering each
//     capability as a function tool.
package reasoning
