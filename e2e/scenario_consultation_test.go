package e2e

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type testConsultationSuite struct {
	BaseSignalingSuite
}

func TestConsultationSuite(t *testing.T) {
	suite.Run(t, &testConsultationSuite{})
}

func (s *testConsultationSuite) TestFullConsultationFlow() {
	var mentor, learner *Client

	// --- STEP 1: CONNECT ---
	s.Run("Step 1: Both participants connect and learn their session ids", func() {
		mentor = s.Dial("Mentor")
		learner = s.Dial("Learner")
		s.Require().NotEqual(mentor.Hello(), learner.Hello())
	})

	// --- STEP 2: JOIN THE CONSULTATION ---
	s.Run("Step 2: Both init into the consultation and see each other", func() {
		mentor.Send("init", map[string]any{
			"accountId": "acc-mentor", "consultationId": "consult-1",
		})
		learner.Send("init", map[string]any{
			"accountId": "acc-learner", "consultationId": "consult-1",
		})

		members := mentor.WaitForMembers(2)
		s.Require().Equal(mentor.SessionID, members["acc-mentor"])
		s.Require().Equal(learner.SessionID, members["acc-learner"])
		s.Require().Equal(members, learner.WaitForMembers(2))

		// The note list was bootstrapped empty for both
		s.Require().Empty(mentor.WaitForNotes(0))
		s.Require().Empty(learner.WaitForNotes(0))
	})

	// --- STEP 3: ROOM IS CAPPED ---
	s.Run("Step 3: A third account is turned away", func() {
		intruder := s.Dial("Intruder")
		intruder.Hello()
		intruder.Send("init", map[string]any{
			"accountId": "acc-intruder", "consultationId": "consult-1",
		})
		payload := intruder.WaitFor("tooManyUsers")
		s.Require().JSONEq(`{"consultationId":"consult-1"}`, string(payload))
		intruder.Close()
	})

	// --- STEP 4: CALL SIGNALING ---
	s.Run("Step 4: Offer and answer are relayed verbatim", func() {
		mentor.Send("callUser", map[string]any{
			"userToCall": learner.SessionID,
			"signalData": map[string]string{"sdp": "mentor-offer"},
			"from":       mentor.SessionID,
		})

		var hey struct {
			Signal json.RawMessage `json:"signal"`
			From   string          `json:"from"`
		}
		s.Require().NoError(json.Unmarshal(learner.WaitFor("hey"), &hey))
		s.Require().JSONEq(`{"sdp":"mentor-offer"}`, string(hey.Signal))
		s.Require().Equal(mentor.SessionID, hey.From)

		learner.Send("acceptCall", map[string]any{
			"to":     mentor.SessionID,
			"signal": map[string]string{"sdp": "learner-answer"},
		})

		var accepted struct {
			Signal json.RawMessage `json:"signal"`
		}
		s.Require().NoError(json.Unmarshal(mentor.WaitFor("callAccepted"), &accepted))
		s.Require().JSONEq(`{"sdp":"learner-answer"}`, string(accepted.Signal))
	})

	// --- STEP 5: SHARED NOTES ---
	s.Run("Step 5: Notes are shared with the whole room in order", func() {
		mentor.Send("addNote", map[string]any{
			"consultationId": "consult-1",
			"newNote":        map[string]string{"text": "review chapter 3"},
		})
		mentor.WaitForNotes(1)
		learner.Send("addNote", map[string]any{
			"consultationId": "consult-1",
			"newNote":        map[string]string{"text": "schedule follow-up"},
		})

		notes := mentor.WaitForNotes(2)
		s.Require().JSONEq(`{"text":"review chapter 3"}`, string(notes[0]))
		s.Require().JSONEq(`{"text":"schedule follow-up"}`, string(notes[1]))
		s.Require().Len(learner.WaitForNotes(2), 2)
	})

	// --- STEP 6: HANG UP WITHOUT LEAVING ---
	s.Run("Step 6: endCall reaches both sides but nobody loses the seat", func() {
		mentor.Send("endCall", map[string]any{"consultationId": "consult-1"})
		mentor.WaitFor("callEnded")
		learner.WaitFor("callEnded")

		// Still seated: a new note reaches both
		mentor.Send("addNote", map[string]any{
			"consultationId": "consult-1",
			"newNote":        map[string]string{"text": "call is over"},
		})
		s.Require().Len(mentor.WaitForNotes(3), 3)
		s.Require().Len(learner.WaitForNotes(3), 3)
	})

	// --- STEP 7: DISCONNECT ---
	s.Run("Step 7: The survivor learns who is left", func() {
		learner.Close()

		var related struct {
			Users map[string]string `json:"users"`
		}
		s.Require().NoError(json.Unmarshal(mentor.WaitFor("RelatedUsers"), &related))
		s.Require().Equal(map[string]string{"acc-mentor": mentor.SessionID}, related.Users)
	})
}
