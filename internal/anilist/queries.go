package anilist

const mediaFields = `
      id
      title { romaji english }
      genres
      averageScore
      description
      format
      seasonYear
      coverImage { large }`

const searchQuery = `
query ($search: String, $genre: String, $year: Int, $perPage: Int) {
  Page(perPage: $perPage) {
    media(search: $search, genre: $genre, seasonYear: $year, type: ANIME, sort: POPULARITY_DESC) {` + mediaFields + `
      recommendations {
        nodes {
          mediaRecommendation {` + mediaFields + `
          }
        }
      }
    }
  }
}`

const suggestQuery = `
query ($s: String, $perPage: Int) {
  Page(perPage: $perPage) {
    media(search: $s, type: ANIME) {
      id
      title { english romaji }
    }
  }
}`

const mediaQuery = `
query ($id: Int) {
  Media(id: $id, type: ANIME) {` + mediaFields + `
  }
}`

const collectionsQuery = `
query {
  GenreCollection
  MediaTagCollection { name }
}`

const trendingQuery = `
query ($perPage: Int) {
  Page(perPage: $perPage) {
    media(sort: TRENDING_DESC, type: ANIME) {
      id
      title { english romaji }
      averageScore
      format
    }
  }
}`

const staffQuery = `
query ($perPage: Int) {
  Page(perPage: $perPage) {
    staff(sort: FAVOURITES_DESC) {
      name { full }
      primaryOccupations
    }
  }
}`

const studiosQuery = `
query ($perPage: Int) {
  Page(perPage: $perPage) {
    studios(sort: FAVOURITES_DESC) {
      name
      favourites
    }
  }
}`
