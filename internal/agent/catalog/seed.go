package catalog

import "github.com/toolscout-core/server/internal/agent/model"

// SeedTools is the built-in tool catalog used when no database is configured.
var SeedTools = []model.CandidateItem{
	// text / writing
	{ID: "tool-001", Name: "ChatGPT", Category: "text", PriceTier: "freemium", HasAPI: true, URL: "https://chat.openai.com",
		Description: "대화형 글쓰기와 아이디어 정리에 강한 범용 AI 어시스턴트", Tags: []string{"writing", "chat", "korean", "api"}},
	{ID: "tool-002", Name: "Wrtn", Category: "text", PriceTier: "free", URL: "https://wrtn.ai",
		Description: "한국어 글쓰기와 블로그·리포트 초안 작성에 특화된 AI 서비스", Tags: []string{"writing", "korean", "templates"}},
	{ID: "tool-003", Name: "Jasper", Category: "writing", PriceTier: "paid", HasAPI: true, URL: "https://www.jasper.ai",
		Description: "마케팅 카피와 브랜드 톤에 맞춘 콘텐츠를 만드는 AI 카피라이터", Tags: []string{"copywriting", "templates", "collaboration"}},
	{ID: "tool-004", Name: "Copy.ai", Category: "writing", PriceTier: "freemium", URL: "https://www.copy.ai",
		Description: "광고 문구와 이메일을 빠르게 생성하는 카피라이팅 도구", Tags: []string{"copywriting", "templates", "workflow"}},
	{ID: "tool-005", Name: "Grammarly", Category: "writing", PriceTier: "freemium", URL: "https://www.grammarly.com",
		Description: "영문 문법 교정과 문장 다듬기를 도와주는 AI 글쓰기 보조", Tags: []string{"editing", "mobile"}},

	// image / design
	{ID: "tool-010", Name: "Midjourney", Category: "image", PriceTier: "paid", URL: "https://www.midjourney.com",
		Description: "프롬프트로 고품질 일러스트와 콘셉트 아트를 만드는 이미지 생성 AI", Tags: []string{"art", "illustration"}},
	{ID: "tool-011", Name: "DALL·E 3", Category: "image", PriceTier: "freemium", HasAPI: true, URL: "https://openai.com/dall-e-3",
		Description: "문장 이해력이 뛰어난 텍스트-이미지 생성 모델", Tags: []string{"art", "api"}},
	{ID: "tool-012", Name: "Canva", Category: "design", PriceTier: "freemium", URL: "https://www.canva.com",
		Description: "템플릿 기반 디자인에 AI 이미지·문구 생성을 더한 올인원 디자인 툴", Tags: []string{"templates", "collaboration", "korean", "mobile"}},
	{ID: "tool-013", Name: "Adobe Firefly", Category: "image", PriceTier: "freemium", URL: "https://firefly.adobe.com",
		Description: "상업적 이용이 안전한 학습 데이터로 만든 어도비의 이미지 생성 AI", Tags: []string{"art", "editing"}},
	{ID: "tool-014", Name: "Leonardo AI", Category: "image", PriceTier: "freemium", HasAPI: true, URL: "https://leonardo.ai",
		Description: "게임 에셋과 캐릭터 이미지 제작에 강한 생성 AI 플랫폼", Tags: []string{"art", "api"}},
	{ID: "tool-015", Name: "Stable Diffusion", Category: "image", PriceTier: "free", HasAPI: true, URL: "https://stability.ai",
		Description: "로컬 실행과 커스터마이징이 가능한 오픈소스 이미지 생성 모델", Tags: []string{"open-source", "api"}},

	// video
	{ID: "tool-020", Name: "Runway", Category: "video", PriceTier: "freemium", URL: "https://runwayml.com",
		Description: "텍스트와 이미지로 짧은 영상을 만들고 편집하는 AI 영상 스튜디오", Tags: []string{"editing", "generation"}},
	{ID: "tool-021", Name: "Pika", Category: "video", PriceTier: "freemium", URL: "https://pika.art",
		Description: "간단한 프롬프트로 숏폼 영상을 생성하는 영상 AI", Tags: []string{"generation"}},
	{ID: "tool-022", Name: "Synthesia", Category: "video", PriceTier: "paid", HasAPI: true, URL: "https://www.synthesia.io",
		Description: "AI 아바타가 대본을 읽어 주는 교육·홍보 영상 제작 툴", Tags: []string{"avatar", "korean", "api"}},
	{ID: "tool-023", Name: "CapCut", Category: "video", PriceTier: "free", URL: "https://www.capcut.com",
		Description: "자동 자막과 템플릿으로 쉽게 편집하는 모바일 친화 영상 편집기", Tags: []string{"editing", "templates", "mobile", "korean"}},
	{ID: "tool-024", Name: "Vrew", Category: "video", PriceTier: "freemium", URL: "https://vrew.ai",
		Description: "음성 인식 자동 자막과 컷 편집을 지원하는 한국어 영상 편집기", Tags: []string{"editing", "korean"}},

	// audio
	{ID: "tool-030", Name: "ElevenLabs", Category: "audio", PriceTier: "freemium", HasAPI: true, URL: "https://elevenlabs.io",
		Description: "자연스러운 다국어 음성 합성과 보이스 클로닝 서비스", Tags: []string{"voice", "tts", "korean", "api"}},
	{ID: "tool-031", Name: "Suno", Category: "music", PriceTier: "freemium", URL: "https://suno.com",
		Description: "가사와 장르만 입력하면 노래를 만들어 주는 음악 생성 AI", Tags: []string{"music", "generation"}},
	{ID: "tool-032", Name: "Clova Dubbing", Category: "voice", PriceTier: "free", URL: "https://clovadubbing.naver.com",
		Description: "다양한 한국어 목소리로 영상 더빙을 만드는 음성 합성 서비스", Tags: []string{"voice", "tts", "korean"}},

	// code
	{ID: "tool-040", Name: "GitHub Copilot", Category: "code", PriceTier: "paid", URL: "https://github.com/features/copilot",
		Description: "IDE 안에서 코드 자동 완성과 채팅을 제공하는 AI 페어 프로그래머", Tags: []string{"ide", "editor"}},
	{ID: "tool-041", Name: "Cursor", Category: "code", PriceTier: "freemium", URL: "https://cursor.com",
		Description: "코드베이스 전체를 이해하는 AI 네이티브 코드 에디터", Tags: []string{"ide", "editor"}},
	{ID: "tool-042", Name: "Codeium", Category: "code", PriceTier: "free", URL: "https://codeium.com",
		Description: "여러 IDE를 지원하는 무료 AI 코드 자동 완성 도구", Tags: []string{"ide"}},
	{ID: "tool-043", Name: "Replit", Category: "developer", PriceTier: "freemium", HasAPI: true, URL: "https://replit.com",
		Description: "브라우저에서 코딩과 배포까지 AI와 함께 하는 개발 환경", Tags: []string{"collaboration", "api"}},

	// productivity
	{ID: "tool-050", Name: "Notion AI", Category: "productivity", PriceTier: "freemium", HasAPI: true, URL: "https://www.notion.so/product/ai",
		Description: "문서 요약과 회의록 정리, 글 다듬기를 노션 안에서 처리하는 AI", Tags: []string{"collaboration", "templates", "korean", "api"}},
	{ID: "tool-051", Name: "Otter.ai", Category: "productivity", PriceTier: "freemium", URL: "https://otter.ai",
		Description: "회의 음성을 실시간 받아쓰고 요약하는 회의 노트 AI", Tags: []string{"meeting", "integration"}},
	{ID: "tool-052", Name: "Gamma", Category: "productivity", PriceTier: "freemium", URL: "https://gamma.app",
		Description: "한 줄 설명으로 발표 자료와 문서를 디자인해 주는 프레젠테이션 AI", Tags: []string{"presentation", "templates", "korean"}},
	{ID: "tool-053", Name: "Clova Note", Category: "productivity", PriceTier: "free", URL: "https://clovanote.naver.com",
		Description: "한국어 음성 기록을 화자별로 정리하고 요약하는 노트 서비스", Tags: []string{"meeting", "korean", "mobile"}},

	// website
	{ID: "tool-060", Name: "Wix ADI", Category: "website", PriceTier: "freemium", URL: "https://www.wix.com",
		Description: "몇 가지 질문에 답하면 맞춤 웹사이트를 만들어 주는 AI 빌더", Tags: []string{"templates", "korean"}},
	{ID: "tool-061", Name: "Framer", Category: "website", PriceTier: "freemium", URL: "https://www.framer.com",
		Description: "프롬프트로 반응형 랜딩 페이지를 만들고 바로 배포하는 디자인 툴", Tags: []string{"templates", "collaboration"}},
	{ID: "tool-062", Name: "Webflow", Category: "web design", PriceTier: "freemium", HasAPI: true, URL: "https://webflow.com",
		Description: "코드 없이 전문적인 웹사이트를 설계하는 비주얼 웹 빌더", Tags: []string{"collaboration", "api"}},
	{ID: "tool-063", Name: "Durable", Category: "website", PriceTier: "paid", URL: "https://durable.co",
		Description: "30초 만에 소상공인용 웹사이트를 생성하는 AI 웹사이트 빌더", Tags: []string{"templates"}},
	{ID: "tool-064", Name: "10Web", Category: "website", PriceTier: "paid", HasAPI: true, URL: "https://10web.io",
		Description: "AI로 워드프레스 사이트를 만들고 속도를 최적화하는 플랫폼", Tags: []string{"seo", "api"}},
	{ID: "tool-065", Name: "Hostinger AI Builder", Category: "website", PriceTier: "paid", URL: "https://www.hostinger.com",
		Description: "호스팅과 함께 제공되는 AI 웹사이트 생성기", Tags: []string{"templates", "seo"}},
	{ID: "tool-066", Name: "Squarespace Blueprint", Category: "website", PriceTier: "paid", URL: "https://www.squarespace.com",
		Description: "브랜드 취향을 고르면 사이트 구조를 제안하는 AI 디자인 도우미", Tags: []string{"templates"}},
	{ID: "tool-067", Name: "Unicorn Platform", Category: "website", PriceTier: "freemium", URL: "https://unicornplatform.com",
		Description: "스타트업 랜딩 페이지에 최적화된 노코드 웹 빌더", Tags: []string{"templates", "seo"}},

	// automation
	{ID: "tool-070", Name: "Zapier", Category: "automation", PriceTier: "freemium", HasAPI: true, URL: "https://zapier.com",
		Description: "수천 개 앱을 연결해 반복 업무를 자동화하는 워크플로 플랫폼", Tags: []string{"integration", "workflow", "api"}},
	{ID: "tool-071", Name: "Make", Category: "automation", PriceTier: "freemium", HasAPI: true, URL: "https://www.make.com",
		Description: "시각적 시나리오 편집기로 복잡한 업무 흐름을 자동화하는 도구", Tags: []string{"integration", "workflow", "api"}},
	{ID: "tool-072", Name: "n8n", Category: "automation", PriceTier: "free", HasAPI: true, URL: "https://n8n.io",
		Description: "직접 설치해 쓸 수 있는 오픈소스 워크플로 자동화 도구", Tags: []string{"workflow", "open-source", "api"}},
	{ID: "tool-073", Name: "Bardeen", Category: "automation", PriceTier: "freemium", URL: "https://www.bardeen.ai",
		Description: "브라우저에서 반복 작업을 AI로 자동화하는 확장 프로그램", Tags: []string{"workflow", "integration"}},
}
