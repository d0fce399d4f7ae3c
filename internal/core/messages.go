// ABOUTME: Bot message templates for each dialogue stage
// ABOUTME: Plain text with newlines; presentation layers decide how to render them
package core

import (
	"fmt"
	"strings"

	"github.com/harper/dongne/internal/models"
)

const moodExamples = "(데이트, 조용한, 힙한, 혼밥 등)"

func greetingMessages(userID string) []string {
	return []string{
		"안녕?😊",
		fmt.Sprintf("나는 %s의 동네에서 취향이랑 상황에 맞는 가게를 찾아주는 '동네'라고 해!", userID),
	}
}

func cuisinePromptMessage(cuisines []string) string {
	return "오늘은 어떤 음식이 땡겨? 🍽\n아래에서 골라줘! (" + strings.Join(cuisines, ", ") + ")"
}

func cuisineAckMessage(cuisine string) string {
	return fmt.Sprintf("%s 좋지! 😋\n그럼 어떤 게 먹고 싶어? 메뉴 이름도 좋고 '매운 국물' 같은 느낌도 좋아.", cuisine)
}

func menuCommittedMessage(menu string) string {
	return fmt.Sprintf("%s 좋지! 😋\n오늘은 어떤 분위기가 좋아? %s", menu, moodExamples)
}

func singleCandidateMessage(menu string) string {
	return fmt.Sprintf("%s 먹고 싶구나! 😋\n오늘은 어떤 분위기가 좋아? %s", menu, moodExamples)
}

func candidateListMessage(candidates []models.MenuCandidate) string {
	var b strings.Builder
	b.WriteString("이 느낌이면 이런 메뉴들이 떠올라! 😋\n\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.MenuName)
	}
	b.WriteString("\n하나 골라줘! (번호나 이름으로 말해줘)")
	return b.String()
}

const (
	noCandidatesMessage   = "음… 지금 말로는 메뉴가 잘 안 떠올라 😢\n조금 더 자세히 말해줄래? (예: 김치찌개, 매운 국물, 면 요리 등)"
	candidatesLostMessage = "음… 메뉴 후보 리스트가 없어졌어 😢\n다시 메뉴부터 골라보자!"
	notInListMessage      = "리스트에 없는 선택이야 😅 번호나 메뉴 이름으로 다시 골라줘!"
	noTagsMessage         = "이번 말에서는 딱 꽂히는 태그를 못 찾았어 😭\n그래도 최대한 비슷한 분위기로 찾아볼 건데, 추천해볼까?"
	placesEmptyMessage    = "미안… 지금 정보로는 딱 맞는 가게를 못 찾았어 🥲\n분위기를 조금 다르게 말해볼래?"
	declinedMessage       = "좋아! 그럼 분위기를 조금 다르게 말해볼래? 😊"
	unclearMessage        = "잘 모르겠어 😅 보고 싶으면 '응', 아니면 '아니'라고 말해줘!"
	resultsLostMessage    = "앗, 추천 리스트가 사라졌어 😢\n다시 한 번 메뉴부터 골라보자!"
	invalidPlaceMessage   = "그 번호의 가게는 리스트에 없어 😅 카드 번호를 다시 골라줘!"
	choiceNotSavedMessage = "앗, 선택을 저장하지 못했어 😢 잠시 후에 다시 골라줘!"
)

func tagsFoundMessage(tags []string) string {
	return fmt.Sprintf("음, 이런 느낌이구나! 😌\n이번에는 %s 태그를 중심으로 가게를 골라볼게.\n이 태그 기준으로 추천해볼까?",
		strings.Join(tags, ", "))
}

func placesFoundMessage(recs []models.PlaceRecommendation) string {
	var b strings.Builder
	b.WriteString("너의 취향이랑 분위기를 반영해서 이런 가게들을 골라봤어! 😋\n\n")
	for i, r := range recs {
		fmt.Fprintf(&b, "%d. %s", i+1, r.PlaceName)
		if len(r.MatchedTags) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(r.MatchedTags, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n마음에 드는 가게를 골라줘! 🌟")
	return b.String()
}

func placeChosenMessage(place string) string {
	return fmt.Sprintf("좋아! 오늘은 %s로 가보자 😊\n다음에도 또 동네 불러줘!", place)
}
