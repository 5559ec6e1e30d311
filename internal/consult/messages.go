package consult

import (
	"fmt"

	"github.com/kentyisapen/line-chatbot-workshop/internal/lineutil"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Fixed reply texts of the consultation flow.
const (
	msgWelcome = "友だち追加ありがとうございます🙌\n" +
		"体調が気になるときは、下のメニューから「受診を開始する」を選んでください。"

	msgPleaseStart = "受診はまだ開始されていません。\n" +
		"下のメニューから「受診を開始する」を選んでください。"

	msgBusy = "ただいま受診中です。\n" +
		"下のメニューの選択肢から操作してください。"

	msgChooseSituation = "当てはまる状況を選んでください。"

	msgInterrupted = "受診を中断しました。"

	msgCallNoResponse = "呼びかけに応答がない場合は、ためらわず119番へ通報して救急車を呼んでください。"

	msgOtherSituation = "しばらく様子を観察してください。\n" +
		"状態が変わったときは、もう一度「受診を開始する」からご相談ください。"

	msgUnknownAction = "不明な操作です。"
)

func welcomeMessages() []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(msgWelcome),
	}
}

func pleaseStartMessages() []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(msgPleaseStart),
	}
}

func busyMessages() []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(msgBusy),
	}
}

// situationButtons is the buttons template offering the two follow-up
// choices after a consultation starts.
func situationButtons() messaging_api.MessageInterface {
	actions := []lineutil.Action{
		lineutil.NewPostbackAction(ActionCallNoResponse.Label(), ActionCallNoResponse.PostbackData()),
		lineutil.NewPostbackAction(ActionOtherSituation.Label(), ActionOtherSituation.PostbackData()),
	}
	return lineutil.NewButtonsTemplate(msgChooseSituation, "受診を開始しました", msgChooseSituation, actions)
}

// echoMessage echoes the label of the chosen action back to the user.
func echoMessage(action Action) messaging_api.MessageInterface {
	return lineutil.NewTextMessage(fmt.Sprintf("「%s」が選択されました。", action.Label()))
}
