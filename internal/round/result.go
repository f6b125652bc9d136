package round

import "github.com/taurusgroup/isrsac-multisig/pkg/party"

// Output is the terminal round of a successful execution.
type Output struct {
	*Helper
	Result interface{}
}

// Abort is the terminal round of a failed execution, holding the parties identified as misbehaving.
type Abort struct {
	*Helper
	Culprits []party.ID
	Err      error
}

func (*Output) VerifyMessage(Message) error { return nil }
func (*Output) StoreMessage(Message) error { return nil }
func (*Output) MessageContent() Content { return nil }
func (*Output) Number() Number { return 0 }
func (r *Output) Finalize(chan<- *Message) (Session, error) { return r, nil }

func (*Abort) VerifyMessage(Message) error { return nil }
func (*Abort) StoreMessage(Message) error { return nil }
func (*Abort) MessageContent() Content { return nil }
func (*Abort) Number() Number { return 0 }
func (r *Abort) Finalize(chan<- *Message) (Session, error) { return r, nil }

// ResultRound ends the protocol with result.
func (h *Helper) ResultRound(result interface{}) Session {
	return &Output{Helper: h, Result: result}
}

// AbortRound ends the protocol with err, blaming culprits.
// Finalize should return it together with a nil error.
func (h *Helper) AbortRound(err error, culprits ...party.ID) Session {
	return &Abort{Helper: h, Culprits: culprits, Err: err}
}
